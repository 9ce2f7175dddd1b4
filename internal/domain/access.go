package domain

// Access policy for FASSA. All functions are pure decisions over
// (caller role, target role/resource); a denial is always an explicit
// ErrPermissionDenied, never a silent filter.

// CanCreateAccount reports whether caller may create an account with
// the target role. SUPERADMIN creates any role; ADMIN only students.
func CanCreateAccount(caller, target Role) error {
	switch caller {
	case RoleSuperAdmin:
		return nil
	case RoleAdmin:
		if target == RoleStudent {
			return nil
		}
		return ErrPermissionDenied
	case RoleStudent:
		return ErrPermissionDenied
	}
	return ErrPermissionDenied
}

// CanManageAccount reports whether caller may read, update, or delete
// an account with the target role. Self-access is handled separately
// via the profile endpoints.
func CanManageAccount(caller, target Role) error {
	switch caller {
	case RoleSuperAdmin:
		return nil
	case RoleAdmin:
		if target == RoleStudent {
			return nil
		}
		return ErrPermissionDenied
	case RoleStudent:
		return ErrPermissionDenied
	}
	return ErrPermissionDenied
}

// CanListAccounts reports whether caller may enumerate accounts at all.
// The listing itself is still restricted to roles the caller may manage.
func CanListAccounts(caller Role) error {
	switch caller {
	case RoleSuperAdmin, RoleAdmin:
		return nil
	case RoleStudent:
		return ErrPermissionDenied
	}
	return ErrPermissionDenied
}

// CanWriteCatalog gates mutation of courses and timetable entries.
func CanWriteCatalog(caller Role) error {
	switch caller {
	case RoleSuperAdmin, RoleAdmin:
		return nil
	case RoleStudent:
		return ErrPermissionDenied
	}
	return ErrPermissionDenied
}

// CanReadCatalog allows any authenticated role to list courses and
// timetables.
func CanReadCatalog(caller Role) error {
	switch caller {
	case RoleSuperAdmin, RoleAdmin, RoleStudent:
		return nil
	}
	return ErrPermissionDenied
}

// CanRegisterCourse restricts course registration (and the my-courses /
// my-timetable projections) to students.
func CanRegisterCourse(caller Role) error {
	switch caller {
	case RoleStudent:
		return nil
	case RoleAdmin, RoleSuperAdmin:
		return ErrPermissionDenied
	}
	return ErrPermissionDenied
}

// ManageableRoles returns the account roles the caller may see in
// listings, or nil when the caller may not list at all.
func ManageableRoles(caller Role) []Role {
	switch caller {
	case RoleSuperAdmin:
		return []Role{RoleStudent, RoleAdmin, RoleSuperAdmin}
	case RoleAdmin:
		return []Role{RoleStudent}
	case RoleStudent:
		return nil
	}
	return nil
}
