package dto

// MemberDTO 会员目录项
type MemberDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// StaffDTO 员工目录项
type StaffDTO struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Position  string `json:"position,omitempty"`
	IsAdmin   bool   `json:"isAdmin"`
}
