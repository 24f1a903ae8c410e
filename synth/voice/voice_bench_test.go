package voice

import (
	"fmt"
	"testing"
)

func BenchmarkVoice_Process(b *testing.B) {
	sizes := []int{64, 256}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("%d", size), func(b *testing.B) {
			v := NewVoice(NewGlobals(WithBlockSize(size)), NewInputs())
			v.Inputs().NoteOn(60, 0.8, 0)

			b.SetBytes(int64(size * 8))
			b.ResetTimer()

			for range b.N {
				v.Process(size)
			}
		})
	}
}
