package models

import "time"

// TemplateType identifies one of the platform's notification kinds.
type TemplateType string

const (
	TypeInvite               TemplateType = "invite"
	TypeOrderConfirmation    TemplateType = "order_confirmation"
	TypeOrderCancellation    TemplateType = "order_cancellation"
	TypeGiftReminder         TemplateType = "gift_reminder"
	TypeShippingNotification TemplateType = "shipping_notification"
	TypeGiftDelivered        TemplateType = "gift_delivered"
	TypePasswordReset        TemplateType = "password_reset"
	TypeAccountCreated       TemplateType = "account_created"
	TypeFeedbackRequest      TemplateType = "feedback_request"
	TypeExpirationWarning    TemplateType = "expiration_warning"
	TypeThankYou             TemplateType = "thank_you"
)

// TemplateTypes lists every type in catalog order.
var TemplateTypes = []TemplateType{
	TypeInvite,
	TypeOrderConfirmation,
	TypeOrderCancellation,
	TypeGiftReminder,
	TypeShippingNotification,
	TypeGiftDelivered,
	TypePasswordReset,
	TypeAccountCreated,
	TypeFeedbackRequest,
	TypeExpirationWarning,
	TypeThankYou,
}

func (t TemplateType) Valid() bool {
	for _, known := range TemplateTypes {
		if t == known {
			return true
		}
	}
	return false
}

type TemplateCategory string

const (
	CategoryTransactional TemplateCategory = "transactional"
	CategoryMarketing     TemplateCategory = "marketing"
	CategorySystem        TemplateCategory = "system"
)

// Channel is a delivery medium for a rendered template.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
	ChannelSMS   Channel = "sms"
)

// TemplateVariable documents one substitution key of a template type.
type TemplateVariable struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Example     string `json:"example"`
}

// GlobalTemplate is the system default for a template type. Empty push and
// SMS defaults mean the type has no content for that channel.
type GlobalTemplate struct {
	ID                 string             `json:"id"`
	Type               TemplateType       `json:"type"`
	Name               string             `json:"name"`
	Description        string             `json:"description"`
	Category           TemplateCategory   `json:"category"`
	DefaultSubject     string             `json:"defaultSubject"`
	DefaultHTMLContent string             `json:"defaultHtmlContent"`
	DefaultTextContent string             `json:"defaultTextContent"`
	DefaultPushTitle   string             `json:"defaultPushTitle,omitempty"`
	DefaultPushBody    string             `json:"defaultPushBody,omitempty"`
	DefaultSMSContent  string             `json:"defaultSmsContent,omitempty"`
	Variables          []TemplateVariable `json:"variables"`
	IsSystem           bool               `json:"isSystem"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// GDPRSettings controls privacy footers appended by the site.
type GDPRSettings struct {
	IncludeDataProcessingNotice     bool   `json:"includeDataProcessingNotice"`
	IncludeUnsubscribeLink          bool   `json:"includeUnsubscribeLink"`
	IncludeDataDeletionInstructions bool   `json:"includeDataDeletionInstructions"`
	DataRetentionPeriod             string `json:"dataRetentionPeriod"`
	PrivacyPolicyURL                string `json:"privacyPolicyUrl,omitempty"`
	DataControllerName              string `json:"dataControllerName"`
	DataControllerEmail             string `json:"dataControllerEmail"`
	DataControllerAddress           string `json:"dataControllerAddress,omitempty"`
}

type ReminderSettings struct {
	Enabled              bool `json:"enabled"`
	SendAfterDays        int  `json:"sendAfterDays"`
	MaxReminders         int  `json:"maxReminders"`
	ReminderIntervalDays int  `json:"reminderIntervalDays"`
}

// SiteTemplate is a site's editable copy of a global template.
type SiteTemplate struct {
	ID               string            `json:"id"`
	SiteID           string            `json:"siteId"`
	GlobalTemplateID string            `json:"globalTemplateId"`
	Type             TemplateType      `json:"type"`
	Name             string            `json:"name"`
	EmailEnabled     bool              `json:"emailEnabled"`
	Subject          string            `json:"subject"`
	HTMLContent      string            `json:"htmlContent"`
	TextContent      string            `json:"textContent"`
	PushEnabled      bool              `json:"pushEnabled"`
	PushTitle        string            `json:"pushTitle,omitempty"`
	PushBody         string            `json:"pushBody,omitempty"`
	SMSEnabled       bool              `json:"smsEnabled"`
	SMSContent       string            `json:"smsContent,omitempty"`
	Enabled          bool              `json:"enabled"`
	GDPR             *GDPRSettings     `json:"gdprSettings,omitempty"`
	Reminders        *ReminderSettings `json:"reminderSettings,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// ChannelEnabled reports the per-channel flag.
func (s *SiteTemplate) ChannelEnabled(ch Channel) bool {
	switch ch {
	case ChannelEmail:
		return s.EmailEnabled
	case ChannelPush:
		return s.PushEnabled
	case ChannelSMS:
		return s.SMSEnabled
	}
	return false
}

// SiteTemplateUpdate is a partial update; nil fields are left unchanged.
type SiteTemplateUpdate struct {
	Name         *string           `json:"name,omitempty"`
	EmailEnabled *bool             `json:"emailEnabled,omitempty"`
	Subject      *string           `json:"subject,omitempty"`
	HTMLContent  *string           `json:"htmlContent,omitempty"`
	TextContent  *string           `json:"textContent,omitempty"`
	PushEnabled  *bool             `json:"pushEnabled,omitempty"`
	PushTitle    *string           `json:"pushTitle,omitempty"`
	PushBody     *string           `json:"pushBody,omitempty"`
	SMSEnabled   *bool             `json:"smsEnabled,omitempty"`
	SMSContent   *string           `json:"smsContent,omitempty"`
	Enabled      *bool             `json:"enabled,omitempty"`
	GDPR         *GDPRSettings     `json:"gdprSettings,omitempty"`
	Reminders    *ReminderSettings `json:"reminderSettings,omitempty"`
}

// GlobalTemplateUpdate is a partial update of a global template's editable fields.
type GlobalTemplateUpdate struct {
	Name               *string            `json:"name,omitempty"`
	Description        *string            `json:"description,omitempty"`
	Category           *TemplateCategory  `json:"category,omitempty"`
	DefaultSubject     *string            `json:"defaultSubject,omitempty"`
	DefaultHTMLContent *string            `json:"defaultHtmlContent,omitempty"`
	DefaultTextContent *string            `json:"defaultTextContent,omitempty"`
	DefaultPushTitle   *string            `json:"defaultPushTitle,omitempty"`
	DefaultPushBody    *string            `json:"defaultPushBody,omitempty"`
	DefaultSMSContent  *string            `json:"defaultSmsContent,omitempty"`
	Variables          []TemplateVariable `json:"variables,omitempty"`
}
