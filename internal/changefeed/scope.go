package changefeed

// Scope selects which tenants a Synchronizer follows. It is resolved once at
// construction; nothing downstream re-checks tenant identity by string
// comparison.
type Scope struct {
	all      bool
	tenantID string
}

func SingleTenant(id string) Scope {
	return Scope{tenantID: id}
}

func AllTenants() Scope {
	return Scope{all: true}
}

// ParseScope maps the configured scope value: the literal "all" means the
// administrative multi-tenant context, anything else a single community id.
func ParseScope(s string) Scope {
	if s == "" || s == "all" {
		return AllTenants()
	}
	return SingleTenant(s)
}

func (s Scope) IsAll() bool      { return s.all }
func (s Scope) TenantID() string { return s.tenantID }
