// Package notify tells the administrator about new contact messages.
//
// MatrixNotifier is a store.Observer: install it on the store and every
// successful create is rendered to markdown, converted to HTML with goldmark,
// and posted to a Matrix room as a formatted m.text event.
//
//	notifier, err := notify.NewMatrixNotifier(cfg.Notify.Matrix, logger)
//	s, err := store.NewSQLiteStore(path, store.WithObserver(notifier))
//	defer notifier.Close()
//
// Sends run in the background with DefaultSendTimeout. A failed send is logged
// and dropped; the saved message is unaffected. Close waits for in-flight
// sends, so close the notifier after the HTTP server has drained.
package notify
