package entity

const DefaultAvatarKey = "default"

// Profile is the public face of a player supplied by the identity provider.
type Profile struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	AvatarKey string `json:"avatar_key"`
}

func NewProfile(id string) *Profile {
	return &Profile{
		ID:        id,
		AvatarKey: DefaultAvatarKey,
	}
}
