package domain

// TaskStatus is the cleaning lifecycle of a task. Progression is forward
// only: pending_key_photo -> cleaning -> completed.
type TaskStatus string

const (
	TaskPendingKeyPhoto TaskStatus = "pending_key_photo"
	TaskCleaning        TaskStatus = "cleaning"
	TaskCompleted       TaskStatus = "completed"
)

// Rank orders statuses by progress; lower is less complete.
func (s TaskStatus) Rank() int {
	switch s {
	case TaskCleaning:
		return 1
	case TaskCompleted:
		return 2
	default:
		return 0
	}
}

// Task is one cleaning assignment for one property on one calendar date.
// (Date, Title) identifies the physical job; after merge at most one task
// per pair exists in a store's committed state.
type Task struct {
	ID       string     `json:"id"`
	Date     string     `json:"date"` // YYYY-MM-DD, no time zone conversion
	Title    string     `json:"title"`
	Region   string     `json:"region,omitempty"`
	Address  string     `json:"address"`
	UnitType string     `json:"unitType"`
	Status   TaskStatus `json:"status" enum:"pending_key_photo,cleaning,completed"`

	HasCheckout     bool   `json:"hasCheckout"`
	HasCheckin      bool   `json:"hasCheckin"`
	CheckoutTime    string `json:"checkoutTime,omitempty"`    // "HH:MM"
	NextCheckinTime string `json:"nextCheckinTime,omitempty"` // "HH:MM"

	OldCode    string `json:"oldCode,omitempty"`
	MasterCode string `json:"masterCode,omitempty"`
	NewCode    string `json:"newCode,omitempty"`
	KeypadCode string `json:"keypadCode,omitempty"`
	GuideURL   string `json:"guideUrl,omitempty"`

	KeyPhotoURI string `json:"keyPhotoUri,omitempty"`

	CompletedAt        string   `json:"completedAt,omitempty" format:"date-time"`
	CompletedBy        string   `json:"completedBy,omitempty"`
	CompletionNote     string   `json:"completionNote,omitempty"`
	CompletionSupplies []string `json:"completionSupplies,omitempty"`
}

// NoticeType classifies company notices.
type NoticeType string

const (
	NoticeSystem NoticeType = "system"
	NoticeUpdate NoticeType = "update"
	NoticeKey    NoticeType = "key"
)

type Notice struct {
	ID        string     `json:"id"`
	Type      NoticeType `json:"type" enum:"system,update,key"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	Content   string     `json:"content"`
	CreatedAt string     `json:"createdAt" format:"date-time"`
}

// RepairUrgency grades maintenance tickets.
type RepairUrgency string

const (
	RepairLow    RepairUrgency = "low"
	RepairMedium RepairUrgency = "medium"
	RepairHigh   RepairUrgency = "high"
)

// RepairTicket is an append-only maintenance report. TaskID is a lookup
// key back to the task it was filed from, not an ownership link.
type RepairTicket struct {
	ID            string        `json:"id"`
	TaskID        string        `json:"taskId"`
	PropertyTitle string        `json:"propertyTitle"`
	Address       string        `json:"address"`
	Type          string        `json:"type"`
	Description   string        `json:"description"`
	Urgency       RepairUrgency `json:"urgency" enum:"low,medium,high"`
	Contact       string        `json:"contact"`
	CreatedAt     string        `json:"createdAt" format:"date-time"`
	CreatedBy     string        `json:"createdBy"`
}

// StoredUser is the persisted credential cache, overwritten wholesale on
// each sign-in and deleted on sign-out.
type StoredUser struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Profile is the staff member's editable card.
type Profile struct {
	AvatarURI  string `json:"avatarUri,omitempty"`
	Name       string `json:"name"`
	MobileAU   string `json:"mobileAu"`
	Department string `json:"department"`
	Title      string `json:"title"`
}

// Contact is one entry in the internal directory.
type Contact struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MobileAU   string `json:"mobileAu"`
	Department string `json:"department"`
	Title      string `json:"title"`
}
