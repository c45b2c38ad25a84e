// Package fanrelay relays one inbound webhook to many downstream targets.
//
// A Relay accepts a single method (GET or POST), resolves its target list
// on every invocation, forwards the request to all targets concurrently
// and folds their outcomes into one verdict: the sender gets 200 when at
// least one target accepted the webhook and 500 otherwise, which makes
// the provider retry the whole delivery.
//
// Quick start:
//
//	r, err := fanrelay.New(
//	    fanrelay.WithMethod(http.MethodPost),
//	    fanrelay.WithTargets("https://app1.dev/xendit,https://app2.dev/xendit"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	http.Handle("/webhook", api.NewHandler(r, slog.Default()))
//
// Without WithTargets or WithSource, targets are read from the
// WEBHOOK_TARGETS environment variable on every request.
package fanrelay
