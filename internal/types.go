// Copyright 2024 Kelvin Clement Mwinuka
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package internal

// Command is registry metadata describing one command this repository
// implements: its name, owning module and ACL-style categories. It carries
// no handler or key-extraction function, unlike the teacher's original
// Command/HandlerFuncParams pair - dispatching a parsed request to a Go
// function is a wire-protocol collaborator's job, not this repository's;
// Command exists purely so a keyspace (or a log line at startup) can
// enumerate what it supports.
type Command struct {
	Name        string
	Module      string
	Categories  []string
	Description string
}
