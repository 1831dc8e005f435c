package models

// User is an account that can authenticate. Parties named on a contract get a
// user row provisioned automatically so they can later log in with their phone.
type User struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Name     string `gorm:"column:name" json:"name"`
	Phone    string `gorm:"column:phone;uniqueIndex" json:"phone"`
	IsActive bool   `gorm:"column:is_active;default:true" json:"isActive"`
	BaseModel
}

func (User) TableName() string {
	return "users"
}

// Role is a seeded capability bucket (admin, office, owner, tenant, ...)
type Role struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	RoleName string `gorm:"column:role_name;uniqueIndex" json:"roleName"`
	BaseModel
}

func (Role) TableName() string {
	return "roles"
}

// UserRole links a user to a granted role. The pair is unique; grants are
// inserted idempotently.
type UserRole struct {
	ID     uint `gorm:"primarykey" json:"id"`
	UserID uint `gorm:"column:user_id;uniqueIndex:idx_user_roles_user_role" json:"userId"`
	RoleID uint `gorm:"column:role_id;uniqueIndex:idx_user_roles_user_role" json:"roleId"`
	BaseModel
}

func (UserRole) TableName() string {
	return "user_roles"
}

// Office is a tenancy-management business unit with one owner and staff
type Office struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	Name          string `gorm:"column:name" json:"name"`
	OwnerID       uint   `gorm:"column:owner_id;index" json:"ownerId"`
	Status        string `gorm:"column:status;default:pending" json:"status"`
	IsOwnerOffice bool   `gorm:"column:is_owner_office;default:false" json:"isOwnerOffice"`
	BaseModel
}

func (Office) TableName() string {
	return "offices"
}

// OfficeUser links a user to an office as staff
type OfficeUser struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	OfficeID     uint   `gorm:"column:office_id;index" json:"officeId"`
	UserID       uint   `gorm:"column:user_id;index" json:"userId"`
	RoleInOffice string `gorm:"column:role_in_office" json:"roleInOffice"`
	IsActive     bool   `gorm:"column:is_active;default:true" json:"isActive"`
	BaseModel
}

func (OfficeUser) TableName() string {
	return "office_users"
}
