package shared

// BaseEntity carries the document id; entities are mirrored from documents.
type BaseEntity struct {
	ID string `json:"id"`
}

func (e *BaseEntity) GetID() string {
	return e.ID
}

// HasID reports whether a document id has been assigned yet
func (e *BaseEntity) HasID() bool {
	return e.ID != ""
}
