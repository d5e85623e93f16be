package idhash

import (
	"testing"
)

func TestComputeActivityID(t *testing.T) {
	tests := []struct {
		name          string
		tokenContract string
		seller        string
		assetLocator  string
		priceWei      string
		startedAt     int64
	}{
		{
			name:          "full input",
			tokenContract: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
			seller:        "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
			assetLocator:  "https://ipfs.io/ipfs/bafkreifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e",
			priceWei:      "1500000000000000000",
			startedAt:     1704067200000,
		},
		{
			name:          "no seller",
			tokenContract: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
			assetLocator:  "ipfs://bafkreifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e",
			priceWei:      "1",
			startedAt:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeActivityID(tt.tokenContract, tt.seller, tt.assetLocator, tt.priceWei, tt.startedAt)

			if len(got) != 64 {
				t.Errorf("ComputeActivityID() length = %d, want 64", len(got))
			}

			got2 := ComputeActivityID(tt.tokenContract, tt.seller, tt.assetLocator, tt.priceWei, tt.startedAt)
			if got != got2 {
				t.Errorf("ComputeActivityID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeActivityID_CaseInsensitiveAddresses(t *testing.T) {
	a := ComputeActivityID("0x5FbDB2315678afecb367f032d93F642f64180aa3", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", "loc", "1", 1)
	b := ComputeActivityID("0x5fbdb2315678afecb367f032d93f642f64180aa3", "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", "loc", "1", 1)

	if a != b {
		t.Errorf("address case changed the id: %s != %s", a, b)
	}
}

func TestComputeActivityID_DifferentInputs(t *testing.T) {
	base := ComputeActivityID("token", "seller", "loc", "1", 1)

	variants := map[string]string{
		"token":     ComputeActivityID("other", "seller", "loc", "1", 1),
		"seller":    ComputeActivityID("token", "other", "loc", "1", 1),
		"locator":   ComputeActivityID("token", "seller", "other", "1", 1),
		"price":     ComputeActivityID("token", "seller", "loc", "2", 1),
		"startedAt": ComputeActivityID("token", "seller", "loc", "1", 2),
	}

	for field, id := range variants {
		if id == base {
			t.Errorf("changing %s did not change the id", field)
		}
	}
}
