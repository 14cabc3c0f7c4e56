package dto

type CreateGrantRequestDTO struct {
	GranteeType string `json:"grantee_type" binding:"required,oneof=user group"`
	Grantee     string `json:"grantee" binding:"required,max=255"`
	AccessType  string `json:"access_type" binding:"required,oneof=noAccess read write admin"`
}
