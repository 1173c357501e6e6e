package rbac

// Default policy for the assessment workflow.
var RolePermissions = map[string][]string{
	"student": {
		"quiz:view",
		"attempt:create",
		"attempt:view-own",
		"essay:submit",
		"certificate:view-own",
		"user:change_password",
	},
	"instructor": {
		"quiz:view",
		"quiz:create",
		"attempt:view-all",
		"certificate:approve",
		"certificate:view-all",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
