package catalog

import (
	"strings"

	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/templating"
)

const wrapperStyle = `font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;`

const buttonStyle = `display: inline-block; background-color: #D91C81; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 20px 0;`

func wrap(body string) string {
	return `<div style="` + wrapperStyle + `">` + body + `</div>`
}

func button(href, label string) string {
	return `<a href="` + href + `" style="` + buttonStyle + `">` + label + `</a>`
}

const footer = `<p style="color: #666; font-size: 12px;">Questions? Contact {{support_email}}</p>`

// GlobalTemplateID is the stable id of the seeded template for a type.
func GlobalTemplateID(t models.TemplateType) string {
	return "global-" + strings.ReplaceAll(string(t), "_", "-")
}

// defaultGlobalTemplates returns the seed content of every template type in
// catalog order. Timestamps are left for the caller.
func defaultGlobalTemplates() []models.GlobalTemplate {
	out := []models.GlobalTemplate{
		{
			Type:           models.TypeInvite,
			Name:           "Gift Selection Invite",
			Description:    "Initial invitation to select a gift from the portal",
			Category:       models.CategoryTransactional,
			DefaultSubject: "You've been invited to select your gift from {{company_name}}",
			DefaultHTMLContent: wrap(`<h1 style="color: #D91C81;">Hello {{recipient_name}}!</h1>` +
				`<p>You've been invited to select a gift from <strong>{{company_name}}</strong>.</p>` +
				button("{{site_url}}", "Select Your Gift") +
				`<p><strong>Access Code:</strong> {{access_code}}</p>` +
				`<p><em>This invitation expires on {{expiration_date}}</em></p>` + footer),
			DefaultTextContent: "Hello {{recipient_name}}! You've been invited to select a gift from {{company_name}}. Visit {{site_url}} and use access code: {{access_code}}. This invitation expires on {{expiration_date}}.",
			DefaultPushTitle:   "Gift Selection Available",
			DefaultPushBody:    "You've been invited to select your gift from {{company_name}}. Tap to choose!",
			DefaultSMSContent:  "Hi {{recipient_name}}! Select your gift from {{company_name}}: {{site_url}} Code: {{access_code}}",
			IsSystem:           true,
		},
		{
			Type:           models.TypeOrderConfirmation,
			Name:           "Order Confirmation",
			Description:    "Confirmation sent after user selects a gift",
			Category:       models.CategoryTransactional,
			DefaultSubject: "Your gift order has been confirmed - Order #{{order_id}}",
			DefaultHTMLContent: wrap(`<h1 style="color: #D91C81;">Order Confirmed!</h1>` +
				`<p>Thank you, {{recipient_name}}! Your gift order has been confirmed.</p>` +
				`<p><strong>Order ID:</strong> {{order_id}}<br><strong>Order Date:</strong> {{order_date}}<br>` +
				`<strong>Gift:</strong> {{gift_name}} x{{gift_quantity}}<br>` +
				`<strong>Shipping Address:</strong> {{shipping_address}}<br>` +
				`<strong>Estimated Delivery:</strong> {{estimated_delivery}}</p>` +
				`<p>Track your shipment at <a href="{{tracking_url}}">{{tracking_url}}</a></p>` + footer),
			DefaultTextContent: "Order Confirmed! Thank you {{recipient_name}}. Order #{{order_id}} - {{gift_name}} x{{gift_quantity}}. Shipping to: {{shipping_address}}. Estimated delivery: {{estimated_delivery}}. Track: {{tracking_url}}",
			DefaultPushTitle:   "Order Confirmed",
			DefaultPushBody:    "Your gift {{gift_name}} is confirmed and will arrive {{estimated_delivery}}",
			DefaultSMSContent:  "Your gift order #{{order_id}} is confirmed! Track: {{tracking_url}}",
			IsSystem:           true,
		},
		{
			Type:           models.TypeOrderCancellation,
			Name:           "Order Cancellation",
			Description:    "Notification when an order has been cancelled",
			Category:       models.CategoryTransactional,
			DefaultSubject: "Order Cancelled - Order #{{order_id}}",
			DefaultHTMLContent: wrap(`<h1 style="color: #D91C81;">Order Cancelled</h1>` +
				`<p>Hi {{recipient_name}}, your gift order has been cancelled as requested.</p>` +
				`<p><strong>Order ID:</strong> {{order_id}}<br><strong>Order Date:</strong> {{order_date}}<br>` +
				`<strong>Gift:</strong> {{gift_name}} x{{gift_quantity}}</p>` +
				button("{{tracking_url}}", "Visit Gift Portal") + footer),
			DefaultTextContent: "Order Cancelled - Hi {{recipient_name}}, your order #{{order_id}} for {{gift_name}} has been cancelled. Order date: {{order_date}}. Questions? Contact {{support_email}}",
			DefaultPushTitle:   "Order Cancelled",
			DefaultPushBody:    "Your order for {{gift_name}} has been cancelled",
			DefaultSMSContent:  "Your order #{{order_id}} has been cancelled. Questions? {{support_email}}",
			IsSystem:           true,
		},
		{
			Type:           models.TypeGiftReminder,
			Name:           "Gift Selection Reminder",
			Description:    "Reminder for users who have not selected their gift yet",
			Category:       models.CategoryMarketing,
			DefaultSubject: "Reminder: Select your gift from {{company_name}} - {{days_remaining}} days left!",
			DefaultHTMLContent: wrap(`<h1 style="color: #D91C81;">Don't miss out, {{recipient_name}}!</h1>` +
				`<p>You still have <strong>{{days_remaining}} days</strong> to select your gift from {{company_name}}.</p>` +
				button("{{site_url}}", "Select Your Gift Now") +
				`<p><em>Your invitation expires on {{expiration_date}}</em></p>` + footer),
			DefaultTextContent: "Hi {{recipient_name}}! Reminder: You have {{days_remaining}} days left to select your gift from {{company_name}}. Visit: {{site_url}} Expires: {{expiration_date}}",
			DefaultPushTitle:   "Gift Selection Reminder",
			DefaultPushBody:    "You have {{days_remaining}} days left to select your gift. Do not miss out!",
			DefaultSMSContent:  "Reminder: {{days_remaining}} days to select your gift from {{company_name}}! {{site_url}}",
			IsSystem:           true,
		},
		{
			Type:           models.TypeShippingNotification,
			Name:           "Shipping Notification",
			Description:    "Notification when gift has shipped",
			Category:       models.CategoryTransactional,
			DefaultSubject: "Your gift has shipped! - Order #{{order_id}}",
			DefaultHTMLContent: wrap(`<h1 style="color: #D91C81;">Your Gift is On the Way!</h1>` +
				`<p>Great news, {{recipient_name}}! Your gift has been shipped.</p>` +
				`<p><strong>Order ID:</strong> {{order_id}}<br><strong>Gift:</strong> {{gift_name}}<br>` +
				`<strong>Shipping to:</strong> {{shipping_address}}<br>` +
				`<strong>Estimated Delivery:</strong> {{estimated_delivery}}</p>` +
				button("{{tracking_url}}", "Track Your Shipment") + footer),
			DefaultTextContent: "Your gift has shipped! Order #{{order_id}} - {{gift_name}}. Estimated delivery: {{estimated_delivery}}. Track: {{tracking_url}}",
			DefaultPushTitle:   "Gift Shipped",
			DefaultPushBody:    "Your {{gift_name}} is on the way! Arriving {{estimated_delivery}}",
			DefaultSMSContent:  "Your gift from {{company_name}} has shipped! Track: {{tracking_url}}",
			IsSystem:           true,
		},
		{
			Type:           models.TypeGiftDelivered,
			Name:           "Delivery Confirmation",
			Description:    "Confirmation when gift has been delivered",
			Category:       models.CategoryTransactional,
			DefaultSubject: "Your gift has been delivered! - Order #{{order_id}}",
			DefaultHTMLContent: wrap(`<h1 style="color: #D91C81;">Your Gift Has Arrived!</h1>` +
				`<p>Great news, {{recipient_name}}! Your gift has been delivered.</p>` +
				`<p><strong>Order ID:</strong> {{order_id}}<br><strong>Gift:</strong> {{gift_name}}<br>` +
				`<strong>Delivered to:</strong> {{shipping_address}}</p>` +
				`<p>We hope you enjoy your gift from {{company_name}}!</p>` + footer),
			DefaultTextContent: "Your gift has been delivered! Order #{{order_id}} - {{gift_name}}. Delivered to: {{shipping_address}}",
			DefaultPushTitle:   "Gift Delivered",
			DefaultPushBody:    "Your {{gift_name}} has been delivered. Enjoy!",
			DefaultSMSContent:  "Your gift from {{company_name}} has been delivered! Enjoy!",
			IsSystem:           true,
		},
		{
			Type:           models.TypePasswordReset,
			Name:           "Password Reset",
			Description:    "Password reset request notification with secure link",
			Category:       models.CategorySystem,
			DefaultSubject: "Password Reset Request - {{company_name}}",
			DefaultHTMLContent: wrap(`<h1 style="color: #D91C81;">Password Reset Request</h1>` +
				`<p>Hi {{recipient_name}},</p>` +
				`<p>We received a request to reset your password for your {{company_name}} account.</p>` +
				button("{{reset_url}}", "Reset Password") +
				`<p><strong>This link will expire in 24 hours.</strong></p>` +
				`<p>If you did not request this password reset, please ignore this email.</p>` + footer),
			DefaultTextContent: "Password Reset Request - Hi {{recipient_name}}, click this link to reset your password: {{reset_url}}. This link expires in 24 hours. If you did not request this, please ignore this message.",
			DefaultPushTitle:   "Password Reset Request",
			DefaultPushBody:    "Tap to reset your password. Link expires in 24 hours.",
			DefaultSMSContent:  "Password reset for {{company_name}}: {{reset_url}} (expires in 24 hours)",
			IsSystem:           true,
		},
		{
			Type:           models.TypeAccountCreated,
			Name:           "Account Created",
			Description:    "Welcome message when a user account is created",
			Category:       models.CategorySystem,
			DefaultSubject: "Welcome to {{company_name}}, {{recipient_name}}!",
			DefaultHTMLContent: wrap(`<h1 style="color: #D91C81;">Welcome, {{recipient_name}}!</h1>` +
				`<p>Your {{company_name}} account has been created for {{recipient_email}}.</p>` +
				button("{{login_url}}", "Log In") + footer),
			DefaultTextContent: "Welcome {{recipient_name}}! Your {{company_name}} account has been created. Log in at {{login_url}}",
			DefaultPushTitle:   "Account Created",
			DefaultPushBody:    "Your {{company_name}} account is ready. Tap to log in.",
			DefaultSMSContent:  "Your {{company_name}} account is ready: {{login_url}}",
			IsSystem:           true,
		},
		{
			Type:           models.TypeFeedbackRequest,
			Name:           "Feedback Request",
			Description:    "Request feedback after gift delivery",
			Category:       models.CategoryMarketing,
			DefaultSubject: "How was your gift experience with {{company_name}}?",
			DefaultHTMLContent: wrap(`<h1 style="color: #D91C81;">We'd Love Your Feedback!</h1>` +
				`<p>Hi {{recipient_name}},</p>` +
				`<p>We hope you enjoyed your gift from {{company_name}}. We would love to hear about your experience!</p>` +
				button("{{feedback_url}}", "Share Your Feedback") + footer),
			DefaultTextContent: "Hi {{recipient_name}}! We would love your feedback on your gift from {{company_name}}. Share your thoughts: {{feedback_url}}",
			DefaultPushTitle:   "Share Your Feedback",
			DefaultPushBody:    "How was your gift experience? Tap to share your thoughts!",
			DefaultSMSContent:  "How was your gift from {{company_name}}? Share feedback: {{feedback_url}}",
		},
		{
			Type:           models.TypeExpirationWarning,
			Name:           "Expiration Warning",
			Description:    "Final warning before gift selection expires",
			Category:       models.CategoryMarketing,
			DefaultSubject: "URGENT: Your gift selection expires on {{expiration_date}}",
			DefaultHTMLContent: wrap(`<h1 style="color: #D91C81;">Last Chance, {{recipient_name}}!</h1>` +
				`<p><strong>Your gift selection opportunity expires on {{expiration_date}}.</strong></p>` +
				`<p>Do not miss out on your gift from {{company_name}}.</p>` + footer),
			DefaultTextContent: "URGENT {{recipient_name}}: Your gift selection from {{company_name}} expires on {{expiration_date}}.",
			DefaultPushTitle:   "Last Chance",
			DefaultPushBody:    "Your gift selection expires on {{expiration_date}}. Select now!",
			DefaultSMSContent:  "URGENT: Gift selection expires {{expiration_date}}!",
		},
		{
			Type:           models.TypeThankYou,
			Name:           "Thank You",
			Description:    "Thank you message after gift selection",
			Category:       models.CategoryMarketing,
			DefaultSubject: "Thank you from {{company_name}}!",
			DefaultHTMLContent: wrap(`<h1 style="color: #D91C81;">Thank You, {{recipient_name}}!</h1>` +
				`<p>Thank you for being a valued part of {{company_name}}.</p>` +
				`<p>Best regards,<br>The {{company_name}} Team</p>` + footer),
			DefaultTextContent: "Thank you {{recipient_name}} from {{company_name}}! We appreciate you.",
			DefaultPushTitle:   "Thank You",
			DefaultPushBody:    "Thank you for being a valued part of {{company_name}}!",
			DefaultSMSContent:  "Thank you {{recipient_name}}! - {{company_name}}",
		},
	}
	for i := range out {
		out[i].ID = GlobalTemplateID(out[i].Type)
		out[i].Variables = templating.VariablesForType(out[i].Type)
	}
	return out
}
