// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import "math"

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)
