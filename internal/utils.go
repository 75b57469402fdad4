// Copyright 2024 Kelvin Clement Mwinuka
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package internal

import (
	"net"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryBackoff composes a go-retry Backoff from the usual knobs - max
// retries, jitter, a per-attempt cap and an overall deadline - the same
// chain of With* wrappers the teacher's replication retry logic uses.
// Passing 0 for any of jitter/cappedDuration/maxDuration/maxRetries skips
// that wrapper entirely.
func RetryBackoff(b retry.Backoff, maxRetries uint64, jitter, cappedDuration, maxDuration time.Duration) retry.Backoff {
	backoff := b
	if maxRetries > 0 {
		backoff = retry.WithMaxRetries(maxRetries, backoff)
	}
	if jitter > 0 {
		backoff = retry.WithJitter(jitter, backoff)
	}
	if cappedDuration > 0 {
		backoff = retry.WithCappedDuration(cappedDuration, backoff)
	}
	if maxDuration > 0 {
		backoff = retry.WithMaxDuration(maxDuration, backoff)
	}
	return backoff
}

// GetFreePort returns a TCP port currently unused on the local machine,
// used to pick a loopback address for the single-voter Raft transport when
// none is configured explicitly.
func GetFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = l.Close()
	}()
	return l.Addr().(*net.TCPAddr).Port, nil
}
