// Copyright 2026 The RSPCore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import "github.com/rspcore/rspcore/internal/regtable"

// defaultRegisterSpecs is a minimal x86-64 general-purpose register layout
// (the GDB "g" packet's traditional order), used until the connect command
// is extended to pull a real layout from the stub's qXfer:features:read
// target description (spec.md's Non-goal excludes target-description
// parsing, so the CLI starts with this fixed stand-in instead).
func defaultRegisterSpecs() []regtable.Spec {
	names := []string{
		"rax", "rbx", "rcx", "rdx", "rsi", "rdi", "rbp", "rsp",
		"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
		"rip",
	}
	specs := make([]regtable.Spec, len(names))
	for i, name := range names {
		specs[i] = regtable.Spec{
			Name:        name,
			InternalNum: i,
			ProtocolNum: i,
			SizeBytes:   8,
		}
	}
	return specs
}
