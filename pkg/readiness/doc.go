// Package readiness decides whether a connection has data ready to read
// within a bounded wait.
//
// Three strategies exist because the platform readiness primitive is not
// equally trustworthy everywhere:
//
//   - Standard arms a read deadline and peeks one byte.
//   - Quiet behaves like Standard but discards diagnostics other than
//     timeouts and reports them as "not ready" (Windows).
//   - Polling reads a single byte in up to three attempts, 50ms apart,
//     inside the same time budget. The byte it reads is handed back to the
//     caller so the next line can include it.
//
// # Classification
//
// The strategy for ModeAuto is chosen from the process environment
// (operating system, uname machine, Go runtime version). The environment is
// probed once and cached for the process lifetime; Classify itself is a
// pure function so callers and tests can feed it any Environment.
//
//	env := readiness.Probe()
//	mode := readiness.Classify(env, cfg.Readiness.PollOn)
//	strategy := readiness.New(mode, logger)
package readiness
