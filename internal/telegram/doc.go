// Package telegram provides Telegram Bot API integration for sending release notifications.
//
// The package implements notifier.Notifier on top of the sendMessage method using
// plain HTTP requests and HTML parse mode.
//
// Authentication requires a bot token (from @BotFather) and chat ID.
package telegram
