// Copyright 2025 gotranspose Authors
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

// Package transpose implements an out-of-place, blocked, parallel tensor
// transposition engine:
//
//	B[π(i)] ← α·A[i] + β·B[π(i)]
//
// for a rank-d tensor A under a permutation π, over float32, float64,
// complex64 and complex128 elements.
//
// A Plan is built once by CreatePlan and executed any number of times;
// buffers may be re-targeted with SetInputPtr/SetOutputPtr without
// re-planning. Planning chooses a fused loop nest and a multi-dimensional
// parallel decomposition of the thread budget, optionally ranking
// candidates by measured wall time (see SelectionMode).
package transpose
