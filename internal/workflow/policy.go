package workflow

import "github.com/qrdine/qrdine-server/internal/model"

// Role policy is data, not scattered branches: each operation has a
// table of roles allowed to perform it, and order patching additionally
// has a per-role set of mutable fields.

// orderPatchFields lists, per role, the order fields that role may
// touch in a PATCH.  A patch naming any field outside the set is
// rejected wholesale, so a chef sending {"status": ..., "total": 0}
// is forbidden rather than partially applied.
var orderPatchFields = map[string]map[string]bool{
	model.RoleChef: {
		"status": true,
	},
	model.RoleAdmin: {
		"status":   true,
		"items":    true,
		"table_no": true,
	},
}

// CanMutateOrder reports whether role may apply a patch touching
// exactly the given fields.  An empty patch is allowed for any role
// that may patch at all.
func CanMutateOrder(role string, fields []string) bool {
	allowed, ok := orderPatchFields[role]
	if !ok {
		return false
	}
	for _, f := range fields {
		if !allowed[f] {
			return false
		}
	}
	return true
}

// adminOnly and staffOnly gate the remaining operations.
var adminOnly = map[string]bool{model.RoleAdmin: true}
var staffOnly = map[string]bool{model.RoleAdmin: true, model.RoleChef: true}

func requireRole(allowed map[string]bool, role string) error {
	if !allowed[role] {
		return ErrForbidden
	}
	return nil
}
