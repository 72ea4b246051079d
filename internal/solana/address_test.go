package solana

import "testing"

const (
	systemProgram = "11111111111111111111111111111111"
	tokenProgram  = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"system program", systemProgram, false},
		{"token program", tokenProgram, false},
		{"empty", "", true},
		{"not base58", "0OIl+/", true},
		{"too short", "abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAddress(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
		})
	}
}

func TestIsOnCurve_AcceptsCurvePoints(t *testing.T) {
	// The ed25519 basepoint encoding is on the curve by construction.
	basepoint := "6x5SYnLroiN7WYq8NQYU9KHcH4YjpBbwpUfVu3EB7ieH"
	if !IsOnCurve(basepoint) {
		t.Fatalf("IsOnCurve(%q) = false, want true", basepoint)
	}
}

func TestIsOnCurve_RejectsMalformed(t *testing.T) {
	if IsOnCurve("") {
		t.Fatal("IsOnCurve accepted empty address")
	}
	if IsOnCurve("abc") {
		t.Fatal("IsOnCurve accepted short address")
	}
}
