package keyring

import "sort"

// StandardFields maps the property names KeyMaker knows about to their labels.
var StandardFields = map[string]string{
	"name":     "Name",
	"username": "Username",
	"password": "Password",
	"host":     "Host",
	"type":     "Type",
	"shell":    "Shell",
	"tunnel0":  "Tunnel #0",
	"tunnel1":  "Tunnel #1",
	"tunnel2":  "Tunnel #2",
	"tunnel3":  "Tunnel #3",
	"tunnel4":  "Tunnel #4",
	"vpn0":     "VPN #0",
	"vpn1":     "VPN #1",
	"vpn2":     "VPN #2",
	"vpn3":     "VPN #3",
	"vpn4":     "VPN #4",
}

// FieldLabel returns the display label for a property name, or the name itself.
func FieldLabel(name string) string {
	if label, ok := StandardFields[name]; ok {
		return label
	}
	return name
}

// IsSecretField reports whether a property's value should be masked on display.
func IsSecretField(name string) bool {
	return name == "password"
}

var fieldOrder = []string{
	"name", "username", "password", "host", "type", "shell",
	"tunnel0", "tunnel1", "tunnel2", "tunnel3", "tunnel4",
	"vpn0", "vpn1", "vpn2", "vpn3", "vpn4",
}

// SortFieldNames orders names for display: standard fields first in their
// usual order, then everything else alphabetically.
func SortFieldNames(names []string) {
	rank := func(name string) int {
		for i, field := range fieldOrder {
			if field == name {
				return i
			}
		}
		return len(fieldOrder)
	}

	sort.SliceStable(names, func(i, j int) bool {
		ri, rj := rank(names[i]), rank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
}
