package authz

import "fmt"

// RoleSeed definición de un rol preestablecido
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds matriz de roles preestablecidos del portal
// regente opera el formulario; supervisor solo consulta el historial;
// admin tiene acceso total
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "supervisor",
			Policies: []Policy{
				{Object: "/portal/me", Action: "GET"},
				{Object: "/portal/logout", Action: "POST"},
				{Object: "/portal/entregas", Action: "GET"},
				{Object: "/portal/entregas/refresh", Action: "POST"},
			},
		},
		{
			Role:     "regente",
			Inherits: []string{"supervisor"},
			Policies: []Policy{
				{Object: "/portal/form", Action: "*"},
				{Object: "/portal/form/*", Action: "*"},
				{Object: "/portal/paciente", Action: "*"},
				{Object: "/portal/entregas/:id/select", Action: "PUT"},
				{Object: "/portal/entregas/select", Action: "DELETE"},
				{Object: "/portal/entregas/:id/resultado", Action: "PATCH"},
			},
		},
		{
			Role: "admin",
			Policies: []Policy{
				{Object: "/portal/*", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles siembra roles y políticas preestablecidos
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.ensureRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := s.ensureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
