package installer

import (
	"os"

	"github.com/cenkalti/backoff/v4"
)

// removeAllWithRetry recursively deletes dir, retrying with a fixed delay
// to ride out transient holds on files inside the tree (editors, antivirus,
// a child process that has not released a handle yet). Exhausting the
// attempt budget leaves remnants behind and logs a warning; it is not a
// failure.
func (i *Installer) removeAllWithRetry(dir string) {
	op := func() error {
		return os.RemoveAll(dir)
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(i.DeleteDelay), i.DeleteAttempts)
	if err := backoff.Retry(op, policy); err != nil {
		i.log.WithField("dir", dir).WithError(err).
			Warn("could not fully remove package directory, leaving remnants")
	}
}
