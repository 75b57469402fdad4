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

package sorted_set

// gtltAllows reports whether a candidate new score is allowed to replace an
// existing one under the AddOptions GT/LT gate. Neither flag set always
// allows the update; both flags set is rejected by the command layer before
// this package ever sees it, the same way NX+XX together is.
func gtltAllows(opts AddOptions, oldScore, newScore Score) bool {
	if opts.GT && newScore <= oldScore {
		return false
	}
	if opts.LT && newScore >= oldScore {
		return false
	}
	return true
}
