package telegram

// Тексты ответов бота
const (
	MessageStart = "Welcome to Filestore Bot.\n" +
		"Use /help to see commands.\n" +
		"Use /filestore to store the next message you send. Admins: /batch and /batchdone."

	MessageHelp = "Commands:\n" +
		"/filestore - store the next message you send (one file)\n" +
		"/myfiles - list your stored files\n" +
		"/setcode NEWCODE - rename your last stored file\n\n" +
		"/batch - start silent batch mode (admin only)\n" +
		"/batchdone - finish batch and get one link\n\n" +
		"/stats - show bot stats (admin only)\n" +
		"/adminlist - list admins (admin only)\n" +
		"/autodelete SECONDS|off - configure auto-delete (admin only)\n" +
		"/addadmin USERID - add an admin (owner only)\n" +
		"/removeadmin USERID - remove an admin (owner only)"

	MessageFileStorePrompt = "Send the message (file / media / sticker / text) you want to store (single)."
	MessageStored          = "Stored!\n%s"
	MessageStoreFailed     = "Could not store the file (forward failed). Please try again."
	MessageNoStoredFiles   = "You have no stored files."

	MessageSetCodeUsage  = "Usage: /setcode NEWCODE"
	MessageCodeInvalid   = "Codes may contain letters, digits, '-' and '_' (3-64 characters)."
	MessageCodeTaken     = "Code already in use."
	MessageNoRecentFile  = "No recent file to rename."
	MessageCodeUpdated   = "Code updated: %s"
	MessageAdminsOnly    = "Admins only."
	MessageNoActiveBatch = "No active batch."
	MessageBatchEmpty    = "Batch is empty."
	MessageBatchSaved    = "Batch saved!\n%s"

	MessageStats     = "Files: %d\nBatches: %d\nItems: %d\nAdmins: %d"
	MessageAdminList = "Admins:\n%s"

	MessageAddAdminUsage    = "Usage: /addadmin USERID"
	MessageRemoveAdminUsage = "Usage: /removeadmin USERID"
	MessageAdminAdded       = "Added admin %d"
	MessageAdminRemoved     = "Removed admin %d"

	MessageAutoDeleteUsage    = "Usage: /autodelete SECONDS or /autodelete off"
	MessageAutoDeleteDisabled = "Auto-delete disabled."
	MessageAutoDeleteEnabled  = "Auto-delete enabled: entries older than %d seconds will be removed."

	MessageSendingBatch    = "Sending %d files…"
	MessageRestoreFailed   = "Failed to restore file."
	MessageUnknownLink     = "Invalid or expired link."
	MessageUnknownCommand  = "Unknown command. Use /help for available commands."
	MessageUnexpectedError = "Something went wrong. Please try again later."
)
