package models

type Role struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

// VisiblePermissions drops blank labels the backend sometimes returns for roles
// without grants.
func (r Role) VisiblePermissions() []string {
	out := make([]string, 0, len(r.Permissions))

	for _, p := range r.Permissions {
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

type Department struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
