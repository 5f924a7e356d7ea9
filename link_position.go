// Copyright 2025 Agentic World, LLC (Sherin Thomas)
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

package brokenlinks

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page regions an anchor can be found in.
const (
	PositionContent     = "content"
	PositionBreadcrumbs = "breadcrumbs"
	PositionPagination  = "pagination"
	PositionNavigation  = "navigation"
	PositionHeader      = "header"
	PositionFooter      = "footer"
	PositionSidebar     = "sidebar"
	PositionUnknown     = "unknown"
)

type positionRule struct {
	position string
	tags     []string
	roles    []string
	hints    []string
}

// Rules are tried in order on every ancestor, so more specific regions
// (breadcrumbs, pagination) come before the navigation they usually sit in.
var positionRules = []positionRule{
	{PositionContent, []string{"main", "article"}, []string{"main", "article"}, nil},
	{PositionBreadcrumbs, nil, nil, []string{"breadcrumb"}},
	{PositionPagination, nil, nil, []string{"pagination", "pager", "page-number"}},
	{PositionNavigation, []string{"nav"}, []string{"navigation"}, []string{"nav", "menu"}},
	{PositionHeader, []string{"header"}, []string{"banner"}, []string{"header", "masthead", "topbar"}},
	{PositionFooter, []string{"footer"}, []string{"contentinfo"}, []string{"footer"}},
	{PositionSidebar, []string{"aside"}, []string{"complementary"}, []string{"sidebar", "aside"}},
}

func (r positionRule) matches(tag, role, attrs string) bool {
	for _, t := range r.tags {
		if tag == t {
			return true
		}
	}
	for _, ro := range r.roles {
		if role == ro {
			return true
		}
	}
	for _, h := range r.hints {
		if strings.Contains(attrs, h) {
			return true
		}
	}
	return false
}

// LinkPosition classifies the region of the page an anchor is in by walking
// its ancestors and looking at semantic elements, ARIA roles and common
// class and id names. The nearest classified ancestor wins.
func LinkPosition(s *goquery.Selection) string {
	for cur := s.Parent(); cur.Length() > 0; cur = cur.Parent() {
		tag := goquery.NodeName(cur)
		if tag == "body" || tag == "html" {
			break
		}
		role := strings.ToLower(cur.AttrOr("role", ""))
		attrs := strings.ToLower(cur.AttrOr("class", "") + " " + cur.AttrOr("id", ""))
		for _, rule := range positionRules {
			if rule.matches(tag, role, attrs) {
				return rule.position
			}
		}
	}
	return PositionUnknown
}
