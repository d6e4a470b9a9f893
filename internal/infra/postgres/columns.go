package postgres

import (
	"fmt"

	"github.com/boddenberg/crm-api-go/internal/domain"
)

// JSON projections of joined rows. pgx decodes them straight into the
// domain ref types; a NULL projection leaves the pointer nil.

func userRefJSON(alias string) string {
	return fmt.Sprintf(`CASE WHEN %[1]s.id IS NULL THEN NULL
		ELSE json_build_object('id', %[1]s.id, 'name', %[1]s.name, 'email', %[1]s.email) END`, alias)
}

func lookupJSON(alias string) string {
	return fmt.Sprintf(`CASE WHEN %[1]s.id IS NULL THEN NULL
		ELSE json_build_object('id', %[1]s.id, 'name', %[1]s.name, 'description', %[1]s.description,
			'is_active', %[1]s.is_active, 'created_at', %[1]s.created_at) END`, alias)
}

func customerJSON(alias string) string {
	return fmt.Sprintf(`CASE WHEN %[1]s.id IS NULL THEN NULL
		ELSE json_build_object('id', %[1]s.id, 'name', %[1]s.name, 'email', %[1]s.email,
			'phone', %[1]s.phone, 'is_converted', %[1]s.is_converted) END`, alias)
}

// auditColumns selects the audit block of the row behind alias; it pairs
// with auditJoins and scanAudit.
func auditColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.created_by, %[1]s.updated_by, %[1]s.created_at, %[1]s.updated_at,
		%[2]s, %[3]s`, alias, userRefJSON("cu"), userRefJSON("uu"))
}

func auditJoins(alias string) string {
	return fmt.Sprintf(`LEFT JOIN users cu ON cu.id = %[1]s.created_by
		LEFT JOIN users uu ON uu.id = %[1]s.updated_by`, alias)
}

func auditDest(a *domain.Audit) []any {
	return []any{&a.CreatedBy, &a.UpdatedBy, &a.CreatedAt, &a.UpdatedAt, &a.CreatedUser, &a.UpdatedUser}
}
