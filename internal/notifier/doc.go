// Package notifier delivers the daily report.
//
// MailNotifier submits it over SMTP with implicit TLS; DryRunNotifier prints
// what would have been sent.
package notifier
