// Copyright Ansvar Systems AB, 2026. All rights reserved.

package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsChallenge(t *testing.T) {
	const path = "/LawPage.aspx?id=42"

	tests := []struct {
		name string
		body string
		want bool
	}{
		{
			"full fingerprint with fromCharCode",
			`<script>document.cookie="TS=abc";x=String.fromCharCode(104);loc="/LawPage.aspx?id=42";</script>`,
			true,
		},
		{
			"full fingerprint with eval",
			`<script>document.cookie="TS=abc";eval(function(p,a,c){}("/LawPage.aspx?id=42"));</script>`,
			true,
		},
		{
			"cookie alone is not a challenge",
			`<script>document.cookie="session=1";</script><p>actual law text</p>`,
			false,
		},
		{
			"obfuscation alone is not a challenge",
			`<script>eval(function(){return String.fromCharCode(65)}());</script>`,
			false,
		},
		{
			"cookie and script but no endpoint marker",
			`<script>document.cookie="TS=abc";eval(function(){}());</script>`,
			false,
		},
		{
			"plain law page",
			`<html><body><h1>Law No. 13 of 2016</h1><p>Article (1)</p></body></html>`,
			false,
		},
		{
			"empty body",
			"",
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsChallenge(tt.body, path))
		})
	}
}

func TestIsChallenge_EmptyPathNeverMatches(t *testing.T) {
	body := `<script>document.cookie="TS=1";String.fromCharCode(1);</script>`
	assert.False(t, IsChallenge(body, ""))
}
