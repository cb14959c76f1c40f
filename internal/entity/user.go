package entity

import "github.com/questx-lab/netgraph/pkg/enum"

type GlobalRole string

var (
	RoleSuperAdmin = enum.New(GlobalRole("SUPER_ADMIN"))
	RoleAdmin      = enum.New(GlobalRole("ADMIN"))
	RoleUser       = enum.New(GlobalRole("USER"))
)

var GlobalAdminRoles = []GlobalRole{RoleSuperAdmin, RoleAdmin}

type User struct {
	Base
	Name string     `gorm:"unique"`
	Role GlobalRole `gorm:"default:USER"`
}
