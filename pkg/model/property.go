package model

const (
	PropertyApproved = "approved"

	RoleUser   = "user"
	RoleClient = "client"
	RoleAdmin  = "admin"
)

type Property struct {
	ID             string `json:"id,omitempty" bson:"_id,omitempty"`
	Name           string `json:"name" bson:"name"`
	ClientID       string `json:"clientId" bson:"client_id"`
	ApprovalStatus string `json:"approvalStatus" bson:"approval_status"`
	Locality       string `json:"locality,omitempty" bson:"locality,omitempty"`
	City           string `json:"city,omitempty" bson:"city,omitempty"`
}

func (p *Property) IsBookable() bool {
	return p.ApprovalStatus == PropertyApproved
}

type User struct {
	ID       string `json:"id,omitempty" bson:"_id,omitempty"`
	Name     string `json:"name" bson:"name"`
	Email    string `json:"email,omitempty" bson:"email,omitempty"`
	Phone    string `json:"phone,omitempty" bson:"phone,omitempty"`
	Role     string `json:"role" bson:"role"`
	ClientID string `json:"clientId,omitempty" bson:"client_id,omitempty"`
}

// Principal is the authenticated caller injected by the gateway.
type Principal struct {
	UserID   string
	Role     string
	ClientID string
}

func (p Principal) IsAdmin() bool  { return p.Role == RoleAdmin }
func (p Principal) IsClient() bool { return p.Role == RoleClient }

func (p Principal) OwnsProperty(property *Property) bool {
	return p.IsClient() && p.ClientID != "" && property != nil && property.ClientID == p.ClientID
}
