package document

// ChangeType labels an edit when it is committed to an undo history. The
// values are the change type names of the browser engine.
type ChangeType string

const (
	ChangeInsertCharacters ChangeType = "insert-characters"
	ChangeInsertFragment   ChangeType = "insert-fragment"
	ChangeInsertText       ChangeType = "insert-text"
	ChangeInsertLink       ChangeType = "insert-link"
	ChangeApplyEntity      ChangeType = "apply-entity"
	ChangeRemoveRange      ChangeType = "remove-range"
	ChangeBlockType        ChangeType = "change-block-type"
	ChangeInlineStyle      ChangeType = "change-inline-style"
	ChangeAdjustDepth      ChangeType = "adjust-depth"
)

var changeTypes = map[ChangeType]struct{}{
	ChangeInsertCharacters: {}, ChangeInsertFragment: {}, ChangeInsertText: {},
	ChangeInsertLink: {}, ChangeApplyEntity: {}, ChangeRemoveRange: {},
	ChangeBlockType: {}, ChangeInlineStyle: {}, ChangeAdjustDepth: {},
}

// Valid reports whether c is a known change type.
func (c ChangeType) Valid() bool {
	_, ok := changeTypes[c]
	return ok
}
