package queue

// Modal identifies the overlay currently shown over the queue.
type Modal int

// Modals, in the order the help screen lists them.
const (
	ModalNone Modal = iota
	ModalCategory
	ModalMerchant
	ModalTags
	ModalType
	ModalDescription
	ModalMerge
	ModalFilter
	ModalDuplicate
	ModalDuplicatesPage
	ModalConfirm
	ModalHelp
)

var modalNames = map[Modal]string{
	ModalNone:           "none",
	ModalCategory:       "category",
	ModalMerchant:       "merchant",
	ModalTags:           "tags",
	ModalType:           "type",
	ModalDescription:    "description",
	ModalMerge:          "merge",
	ModalFilter:         "filter",
	ModalDuplicate:      "duplicate",
	ModalDuplicatesPage: "duplicates page",
	ModalConfirm:        "confirm",
	ModalHelp:           "help",
}

func (m Modal) String() string {
	if name, ok := modalNames[m]; ok {
		return name
	}
	return "unknown"
}

// IsEditor reports whether the modal edits a field of the target items.
func (m Modal) IsEditor() bool {
	switch m {
	case ModalCategory, ModalMerchant, ModalTags, ModalType, ModalDescription:
		return true
	default:
		return false
	}
}
