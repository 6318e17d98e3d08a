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

package execctl

import (
	"testing"

	"github.com/rspcore/rspcore/internal/notify"
	"github.com/rspcore/rspcore/internal/threadreg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 3 from spec.md §8: two threads t1.1, t1.2 in process 1.
// resume(step=true) for t1.1, resume(step=false) for t1.2. commit emits
// exactly "vCont;s:p1.1;c:p1.-1".
func TestBuildNonStopCommit_StepAndWildcard(t *testing.T) {
	reg := threadreg.New()
	t11 := reg.AddThread(notify.Ptid{Pid: 1, Lwp: 1})
	t12 := reg.AddThread(notify.Ptid{Pid: 1, Lwp: 2})

	Resume(t11, true, 0, nil)
	Resume(t12, false, 0, nil)

	packets := BuildNonStopCommit(reg, CoalesceOptions{Multiprocess: true})
	require.Len(t, packets, 1)
	assert.Equal(t, "vCont;s:p1.1;c:p1.-1", packets[0])
}

func TestBuildNonStopCommit_GlobalWildcard(t *testing.T) {
	reg := threadreg.New()
	t11 := reg.AddThread(notify.Ptid{Pid: 1, Lwp: 1})
	t21 := reg.AddThread(notify.Ptid{Pid: 2, Lwp: 1})

	Resume(t11, false, 0, nil)
	Resume(t21, false, 0, nil)

	packets := BuildNonStopCommit(reg, CoalesceOptions{Multiprocess: true})
	require.Len(t, packets, 1)
	assert.Equal(t, "vCont;c", packets[0])
}

func TestBuildNonStopCommit_SiblingNotResumedForcesExplicitActions(t *testing.T) {
	reg := threadreg.New()
	t11 := reg.AddThread(notify.Ptid{Pid: 1, Lwp: 1})
	reg.AddThread(notify.Ptid{Pid: 1, Lwp: 2}) // left NotResumed

	Resume(t11, false, 0, nil)

	packets := BuildNonStopCommit(reg, CoalesceOptions{Multiprocess: true})
	require.Len(t, packets, 1)
	assert.Equal(t, "vCont;c:p1.1", packets[0])
}

func TestBuildNonStopCommit_PacketSizeFlush(t *testing.T) {
	reg := threadreg.New()
	for i := int64(1); i <= 5; i++ {
		th := reg.AddThread(notify.Ptid{Pid: 1, Lwp: i})
		Resume(th, true, 0, nil)
	}
	packets := BuildNonStopCommit(reg, CoalesceOptions{Multiprocess: true, PacketSize: 20})
	assert.Greater(t, len(packets), 1)
	for _, p := range packets {
		assert.LessOrEqual(t, len(p), 20+len(";s:p1.1")) // header-plus-one-action slack
	}
}

func TestCommitApplied(t *testing.T) {
	reg := threadreg.New()
	th := reg.AddThread(notify.Ptid{Pid: 1, Lwp: 1})
	Resume(th, true, 0, nil)
	CommitApplied(reg)
	assert.Equal(t, threadreg.Resumed, th.State)
}
