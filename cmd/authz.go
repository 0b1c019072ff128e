package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/auth"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/config"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/spf13/cobra"
)

// relationWriter 写入或删除 OpenFGA 关系元组
type relationWriter interface {
	SetRelation(ctx context.Context, userID string, relation string, objectType string, objectID string) error
	DeleteRelation(ctx context.Context, userID string, relation string, objectType string, objectID string) error
}

// newRelationWriter 按配置连接 OpenFGA
var newRelationWriter = func(cfg config.OpenFGAConfig) (relationWriter, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("openfga is disabled in the config")
	}
	client, err := auth.NewOpenFGAClient(cfg.APIURL, cfg.StoreID, cfg.ModelID)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// authzModelCmd 输出 OpenFGA 授权模型
var authzModelCmd = &cobra.Command{
	Use:   "authz-model",
	Short: "Print the OpenFGA authorization model",
	Long: `Print the OpenFGA authorization model used by the server.
Write it to the store with the fga CLI before enabling openfga in the config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), auth.GetPermissionModel())
		return err
	},
}

var authzGrantCmd = newRelationCmd("authz-grant", "Grant a relation to a user", true)

var authzRevokeCmd = newRelationCmd("authz-revoke", "Revoke a relation from a user", false)

// newRelationCmd 授予或撤销关系的命令
//
// --object 为记录类型(wbs、forecasts、budgets)或 audit。
func newRelationCmd(use string, short string, grant bool) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `.
Record types take reader, editor or approver; the audit object takes viewer.

Example:
  myscheduling ` + use + ` --user alice --relation approver --object budgets`,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")
			relation, _ := cmd.Flags().GetString("relation")
			object, _ := cmd.Flags().GetString("object")
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			objectType, objectID, err := resolveObject(object, relation)
			if err != nil {
				return err
			}

			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			writer, err := newRelationWriter(cfg.OpenFGA)
			if err != nil {
				return fmt.Errorf("failed to connect to OpenFGA: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			if grant {
				err = writer.SetRelation(ctx, userID, relation, objectType, objectID)
			} else {
				err = writer.DeleteRelation(ctx, userID, relation, objectType, objectID)
			}
			if err != nil {
				return err
			}

			verb := "granted"
			if !grant {
				verb = "revoked"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s user:%s %s on %s:%s\n", verb, userID, relation, objectType, objectID)
			return err
		},
	}
	c.Flags().String("user", "", "User ID")
	c.Flags().String("relation", "", "Relation (reader, editor, approver, viewer)")
	c.Flags().String("object", "", "Record type (wbs, forecasts, budgets) or audit")
	return c
}

// resolveObject 把 --object 映射为 OpenFGA 对象并校验关系
func resolveObject(object string, relation string) (string, string, error) {
	objectType, objectID := auth.AuditObjectType, auth.AuditObjectID
	if object != auth.AuditObjectID {
		kind, err := workflow.ParseKind(object)
		if err != nil {
			return "", "", err
		}
		objectType, objectID = auth.ObjectType, string(kind)
	}
	for _, r := range auth.Relations[objectType] {
		if r == relation {
			return objectType, objectID, nil
		}
	}
	return "", "", fmt.Errorf("relation %q is not defined on %s", relation, objectType)
}

func init() {
	rootCmd.AddCommand(authzModelCmd)
	rootCmd.AddCommand(authzGrantCmd)
	rootCmd.AddCommand(authzRevokeCmd)
}
