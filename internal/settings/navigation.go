/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package settings

// Section is a top-level page of the settings panel.
type Section uint8

const (
	SectionView Section = iota
	SectionContent
)

func (s Section) String() string {
	if s == SectionContent {
		return "content"
	}
	return "view"
}

// Tab is a sub page inside a section. Shape and Text belong to View,
// Static to Content.
type Tab uint8

const (
	TabShape Tab = iota
	TabText
	TabStatic
)

func (t Tab) String() string {
	switch t {
	case TabText:
		return "text"
	case TabStatic:
		return "static"
	}
	return "shape"
}

// Link is a clickable navigation entry of the panel.
type Link uint8

const (
	LinkView Link = iota
	LinkContent
	LinkShape
	LinkText
	LinkStatic
)

// Navigation is the visible section and tab; both are highlighted.
type Navigation struct {
	Section Section
	Tab     Tab
}

// DefaultNavigation is shown whenever the panel opens or closes.
func DefaultNavigation() Navigation { return Navigation{Section: SectionView, Tab: TabShape} }

// Navigate returns the navigation after clicking l. Switching into the View
// section lands on the Text tab; switching into Content lands on Static.
// Clicking the current section keeps the tab.
func (n Navigation) Navigate(l Link) Navigation {
	switch l {
	case LinkView:
		if n.Section != SectionView {
			return Navigation{Section: SectionView, Tab: TabText}
		}
	case LinkContent:
		if n.Section != SectionContent {
			return Navigation{Section: SectionContent, Tab: TabStatic}
		}
	case LinkShape:
		return Navigation{Section: SectionView, Tab: TabShape}
	case LinkText:
		return Navigation{Section: SectionView, Tab: TabText}
	case LinkStatic:
		return Navigation{Section: SectionContent, Tab: TabStatic}
	}
	return n
}
