package templating

import "wecelebrate-notifier/internal/models"

var knownVariables = map[string]models.TemplateVariable{
	"recipient_name":     {Key: "recipient_name", Label: "Recipient Name", Description: "Full name of the recipient", Example: "John Doe"},
	"recipient_email":    {Key: "recipient_email", Label: "Recipient Email", Description: "Email address of the recipient", Example: "john.doe@company.com"},
	"company_name":       {Key: "company_name", Label: "Company Name", Description: "Name of the company", Example: "TechCorp Inc."},
	"site_name":          {Key: "site_name", Label: "Site Name", Description: "Name of the gifting site", Example: "TechCorp Employee Gifts 2026"},
	"site_url":           {Key: "site_url", Label: "Site URL", Description: "URL to access the gifting portal", Example: "https://techcorp-gifts.jala.com"},
	"access_code":        {Key: "access_code", Label: "Access Code", Description: "Unique access code for validation", Example: "ABC-123-XYZ"},
	"expiration_date":    {Key: "expiration_date", Label: "Expiration Date", Description: "When the offer expires", Example: "March 31, 2026"},
	"support_email":      {Key: "support_email", Label: "Support Email", Description: "Contact email for support", Example: "support@company.com"},
	"order_id":           {Key: "order_id", Label: "Order ID", Description: "Unique order identifier", Example: "ORD-2026-001234"},
	"order_date":         {Key: "order_date", Label: "Order Date", Description: "Date the order was placed", Example: "February 5, 2026"},
	"gift_name":          {Key: "gift_name", Label: "Gift Name", Description: "Name of the selected gift", Example: "Premium Wireless Headphones"},
	"gift_description":   {Key: "gift_description", Label: "Gift Description", Description: "Description of the gift", Example: "High-quality wireless headphones with noise cancellation"},
	"gift_quantity":      {Key: "gift_quantity", Label: "Gift Quantity", Description: "Number of items ordered", Example: "1"},
	"gift_image_url":     {Key: "gift_image_url", Label: "Gift Image URL", Description: "URL to the gift image", Example: "https://example.com/images/gift.jpg"},
	"shipping_address":   {Key: "shipping_address", Label: "Shipping Address", Description: "Full shipping address", Example: "123 Main St, San Francisco, CA 94105, United States"},
	"estimated_delivery": {Key: "estimated_delivery", Label: "Estimated Delivery", Description: "Expected delivery date", Example: "February 15-20, 2026"},
	"tracking_url":       {Key: "tracking_url", Label: "Tracking URL", Description: "URL to track the shipment", Example: "https://tracking.example.com/track/ABC123"},
	"days_remaining":     {Key: "days_remaining", Label: "Days Remaining", Description: "Days until the offer expires", Example: "15"},
	"reset_url":          {Key: "reset_url", Label: "Reset URL", Description: "URL to reset the password", Example: "https://example.com/reset-password/ABC123"},
	"login_url":          {Key: "login_url", Label: "Login URL", Description: "URL to log in to the account", Example: "https://example.com/login"},
	"feedback_url":       {Key: "feedback_url", Label: "Feedback URL", Description: "URL to provide feedback", Example: "https://example.com/feedback"},
}

var orderKeys = []string{
	"recipient_name", "recipient_email", "order_id", "order_date", "gift_name",
	"gift_description", "gift_quantity", "gift_image_url", "shipping_address",
	"estimated_delivery", "tracking_url", "company_name", "support_email",
}

var variablesByType = map[models.TemplateType][]string{
	models.TypeInvite: {
		"recipient_name", "recipient_email", "company_name", "site_name",
		"site_url", "access_code", "expiration_date", "support_email",
	},
	models.TypeOrderConfirmation: orderKeys,
	models.TypeOrderCancellation: {
		"recipient_name", "recipient_email", "order_id", "order_date", "gift_name",
		"gift_description", "gift_quantity", "gift_image_url", "shipping_address",
		"tracking_url", "company_name", "support_email",
	},
	models.TypeGiftReminder: {
		"recipient_name", "recipient_email", "company_name", "site_name",
		"site_url", "days_remaining", "expiration_date", "support_email",
	},
	models.TypeShippingNotification: orderKeys,
	models.TypeGiftDelivered:        orderKeys,
	models.TypePasswordReset:        {"recipient_name", "recipient_email", "reset_url", "company_name", "support_email"},
	models.TypeAccountCreated:       {"recipient_name", "recipient_email", "login_url", "company_name", "support_email"},
	models.TypeFeedbackRequest:      {"recipient_name", "recipient_email", "feedback_url", "company_name", "support_email"},
	models.TypeExpirationWarning:    {"recipient_name", "recipient_email", "expiration_date", "company_name", "support_email"},
	models.TypeThankYou:             {"recipient_name", "recipient_email", "company_name", "support_email"},
}

// VariablesForType returns the declared variables of a template type, in
// declaration order. Unknown types yield an empty, non-nil slice.
func VariablesForType(t models.TemplateType) []models.TemplateVariable {
	keys := variablesByType[t]
	out := make([]models.TemplateVariable, 0, len(keys))
	for _, k := range keys {
		out = append(out, knownVariables[k])
	}
	return out
}

// ExampleValues maps each declared key of t to its example value. Used to
// fill previews.
func ExampleValues(t models.TemplateType) map[string]string {
	vars := VariablesForType(t)
	out := make(map[string]string, len(vars))
	for _, v := range vars {
		out[v.Key] = v.Example
	}
	return out
}
