package bitpack

import (
	"math/rand"
	"testing"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	for _, bits := range []int{8, 10, 12, 14, 16} {
		bits := bits
		t.Run(string(rune('0'+bits/10))+string(rune('0'+bits%10)), func(t *testing.T) {
			rng := rand.New(rand.NewSource(int64(bits)))
			const n = 37 // deliberately not a multiple of 4
			src := make([]uint16, n)
			max := uint16(1)<<bits - 1
			for i := range src {
				src[i] = uint16(rng.Intn(int(max) + 1))
			}

			packed, err := Pack(src, n, 1, bits)
			if err != nil {
				t.Fatalf("pack: %v", err)
			}

			var got []uint16
			if bits == 14 {
				got, err = UnpackSubByte(packed, n, 14)
			} else {
				got, err = Unpack(packed, n, bits)
			}
			if err != nil {
				t.Fatalf("unpack: %v", err)
			}

			for i := range src {
				if got[i] != src[i] {
					t.Fatalf("sample %d: got %d want %d", i, got[i], src[i])
				}
			}
		})
	}
}

func TestBitsNeeded(t *testing.T) {
	cases := map[uint32]int{
		0:     1,
		1:     1,
		3:     2,
		4095:  12,
		4096:  13,
		65535: 16,
	}
	for v, want := range cases {
		if got := BitsNeeded(v); got != want {
			t.Errorf("BitsNeeded(%d) = %d, want %d", v, got, want)
		}
	}
}

func TestRoundUpPackWidth(t *testing.T) {
	cases := map[int]int{1: 2, 2: 2, 3: 4, 9: 10, 12: 12, 13: 14, 16: 16}
	for in, want := range cases {
		if got := RoundUpPackWidth(in); got != want {
			t.Errorf("RoundUpPackWidth(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestPack10BitByteLayout(t *testing.T) {
	src := []uint16{0x3FF, 0x000, 0x3FF, 0x000}
	packed, err := Pack(src, 4, 1, 10)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	want := []byte{0xFF, 0xC0, 0x0F, 0xFC, 0x00}
	for i, b := range want {
		if packed[i] != b {
			t.Errorf("byte %d: got %#x want %#x", i, packed[i], b)
		}
	}
}
