package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qrdine/qrdine-server/internal/model"
)

func TestCanMutateOrder(t *testing.T) {
	cases := []struct {
		name   string
		role   string
		fields []string
		want   bool
	}{
		{"chef status", model.RoleChef, []string{"status"}, true},
		{"chef empty patch", model.RoleChef, nil, true},
		{"chef items", model.RoleChef, []string{"items"}, false},
		{"chef status plus extra", model.RoleChef, []string{"status", "total"}, false},
		{"chef table_no", model.RoleChef, []string{"table_no"}, false},
		{"admin status", model.RoleAdmin, []string{"status"}, true},
		{"admin everything", model.RoleAdmin, []string{"items", "status", "table_no"}, true},
		{"admin unknown field", model.RoleAdmin, []string{"total"}, false},
		{"customer status", model.RoleCustomer, []string{"status"}, false},
		{"guest status", model.RoleGuest, []string{"status"}, false},
		{"unknown role", "waiter", []string{"status"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanMutateOrder(tc.role, tc.fields))
		})
	}
}
