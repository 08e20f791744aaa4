package models

import "github.com/google/uuid"

// Entity kinds and actions carried by ChangeEvent.
const (
	EntityPost     = "post"
	EntityCategory = "category"

	ActionCreated     = "created"
	ActionUpdated     = "updated"
	ActionDeleted     = "deleted"
	ActionPublished   = "published"
	ActionUnpublished = "unpublished"
)

// ChangeEvent describes a committed mutation. It is published after the
// write so external builders can refresh what they render.
type ChangeEvent struct {
	Entity string    `json:"entity"`
	Action string    `json:"action"`
	ID     uuid.UUID `json:"id"`
	Slug   string    `json:"slug"`
}
