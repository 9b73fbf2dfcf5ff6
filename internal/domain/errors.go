/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "errors"

// Errors shared across components. All of them are recovered locally; none
// is fatal.
var (
	ErrNotFound         = errors.New("not found")
	ErrUnrecognizedKind = errors.New("unrecognized shape kind")
	ErrDegenerateRay    = errors.New("ray parallel to target plane")
	ErrAssetLoad        = errors.New("asset load failure")
	ErrBusy             = errors.New("drag already in progress")
	ErrInvalidEdit      = errors.New("invalid edit")
	ErrNotOpen          = errors.New("settings form not open")
)
