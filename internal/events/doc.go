// Package events provides a small in-process publish/subscribe mechanism.
//
// Services emit events without knowing which handlers will process them.
// The reminder sweep publishes TypeDueReminder events through ReminderNotifier;
// LogHandler records them and the webhook handler (internal/platform/webhook)
// forwards them to an external endpoint.
package events
