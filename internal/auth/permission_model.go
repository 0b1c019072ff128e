package auth

import (
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/gin-gonic/gin"
)

// ObjectType OpenFGA 中审批记录类型的对象类型,对象 ID 为记录类型名
const ObjectType = "workflow_resource"

// 权限关系
const (
	RelationReader   = "reader"
	RelationEditor   = "editor"
	RelationApprover = "approver"
	RelationViewer   = "viewer"
)

// 授权审计日志只有一个对象 audit_log:audit
const (
	AuditObjectType = "audit_log"
	AuditObjectID   = "audit"
)

// Relations 可以授予的关系,按对象类型
var Relations = map[string][]string{
	ObjectType:      {RelationReader, RelationEditor, RelationApprover},
	AuditObjectType: {RelationViewer},
}

// RelationFor 转换所需的权限关系,approve/reject 需要 approver,其余需要 editor
func RelationFor(t workflow.Transition) string {
	switch t {
	case workflow.TransitionApprove, workflow.TransitionReject:
		return RelationApprover
	default:
		return RelationEditor
	}
}

// TransitionRelation 从路由参数 transition 得到所需关系,未知转换按 editor 检查
func TransitionRelation(c *gin.Context) string {
	t, err := workflow.ParseTransition(c.Param("transition"))
	if err != nil {
		return RelationEditor
	}
	return RelationFor(t)
}

// GetPermissionModel 获取 OpenFGA 权限模型定义
func GetPermissionModel() string {
	return `model
  schema 1.1

type user

type group
  relations
    define member: [user]

type workflow_resource
  relations
    define editor: [user, group#member]
    define approver: [user, group#member]
    define reader: [user, group#member] or editor or approver

type audit_log
  relations
    define viewer: [user, group#member]`
}
