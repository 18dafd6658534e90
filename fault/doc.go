// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches.
//
// Errors that need context (a subject, an out-point, a balance) wrap
// one of these instances with fmt.Errorf("%w: ...") so that both
// errors.Is and the IsErrX class tests still work on the result.
package fault
