package models

// ManagerGroup is the group whose members get global read-only visibility.
const ManagerGroup = "Manager"

// User represents the user model in the database
type User struct {
	Base
	Username         string `gorm:"uniqueIndex;not null" json:"username"`
	Email            string `gorm:"uniqueIndex;not null" json:"email"`
	Password         string `gorm:"not null" json:"-"`
	IsAdmin          bool   `gorm:"default:false" json:"is_admin"`
	IsActive         bool   `gorm:"default:true" json:"is_active"`
	RefreshTokenHash string `gorm:"size:64" json:"-"`

	Groups        []Group        `gorm:"many2many:user_groups" json:"groups,omitempty"`
	Categories    []Category     `gorm:"foreignKey:UserID" json:"categories,omitempty"`
	Expenses      []Expense      `gorm:"foreignKey:UserID" json:"expenses,omitempty"`
	Incomes       []Income       `gorm:"foreignKey:UserID" json:"incomes,omitempty"`
	Notifications []Notification `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
}

// GroupNames returns the names of the groups the user belongs to.
func (u *User) GroupNames() []string {
	names := make([]string, 0, len(u.Groups))
	for _, g := range u.Groups {
		names = append(names, g.Name)
	}
	return names
}

// Group represents a named role group (e.g. "Manager").
type Group struct {
	Base
	Name  string `gorm:"uniqueIndex;not null" json:"name"`
	Users []User `gorm:"many2many:user_groups" json:"users,omitempty"`
}
