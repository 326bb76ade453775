package postman

// WorkspaceSummary is one entry of GET /workspaces.
type WorkspaceSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	Visibility string `json:"visibility,omitempty"`
}

// Ref points at a collection or environment inside a workspace.
type Ref struct {
	ID   string `json:"id"`
	UID  string `json:"uid,omitempty"`
	Name string `json:"name"`
}

// Workspace is the detail returned by GET /workspaces/{id}.
type Workspace struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type,omitempty"`
	Description  string `json:"description,omitempty"`
	Collections  []Ref  `json:"collections,omitempty"`
	Environments []Ref  `json:"environments,omitempty"`
}

// CollectionSummary is one entry of GET /collections.
type CollectionSummary struct {
	ID        string `json:"id"`
	UID       string `json:"uid,omitempty"`
	Name      string `json:"name"`
	Owner     string `json:"owner,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}
