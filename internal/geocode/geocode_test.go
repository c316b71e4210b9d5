// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import "testing"

func TestAddress_Line(t *testing.T) {
	tests := []struct {
		name string
		addr Address
		want string
	}{
		{"display name", testAddress, testAddress.DisplayName},
		{"multi-line display name", Address{DisplayName: "Friedrichstraße 67\n10117 Berlin"}, "Friedrichstraße 67"},
		{
			"composed from parts",
			Address{Street: "Friedrichstraße", HouseNumber: "67", Postcode: "10117", City: "Berlin", Country: "Germany"},
			"Friedrichstraße 67, 10117 Berlin, Germany",
		},
		{"only a country", Address{Country: "Germany"}, "Germany"},
		{"empty address", Address{}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.addr.Line(); got != tc.want {
				t.Errorf("expected line to be %q, got %q", tc.want, got)
			}
		})
	}
}
