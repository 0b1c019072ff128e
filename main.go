/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
// @title           myScheduling Workflow API
// @version         1.0
// @description     Approval workflow for WBS elements, forecasts and project budgets
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token from Keycloak
package main

import "github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/cmd"

func main() {
	cmd.Execute()
}
