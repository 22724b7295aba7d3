package mmd

import (
	"fmt"
	"io"
	"strings"
)

// Format returns a human readable listing of the animation program.
func Format(a *Animation) string {
	var b strings.Builder
	Write(&b, a)
	return b.String()
}

// Write prints the listing of a to w.
func Write(w io.Writer, a *Animation) {
	fmt.Fprintln(w, "BEGIN INSTRUCTIONS")
	for i, ins := range a.Instructions {
		fmt.Fprintf(w, "%d: ", i)
		switch ins := ins.(type) {
		case Keyframe:
			fmt.Fprintf(w, "KEYFRAME (TC=%d)\n", ins.Time)
			for _, e := range ins.Entries {
				fmt.Fprintf(w, "  NODE %d\n", e.Node)
				for _, v := range e.Values {
					fmt.Fprintf(w, "    %s %g\n", v.Axis, v.Value)
				}
			}
		case LoopStart:
			fmt.Fprintf(w, "START LOOP (%d)\n", ins.Count)
		case LoopEnd:
			fmt.Fprintf(w, "END LOOP (TC=%d, NEWTIME=%d)\n", ins.Time, ins.NewTime)
		case TextureBlit:
			fmt.Fprintf(w, "TEXTURE (TC=%d)\n", ins.Time)
			fmt.Fprintf(w, "  SOURCE (%d,%d) %dx%d\n", ins.SrcX, ins.SrcY, ins.Width, ins.Height)
			fmt.Fprintf(w, "  DEST (%d,%d)\n", ins.DestX, ins.DestY)
		case PlaySound:
			fmt.Fprintf(w, "PLAY SOUND (TC=%d, VAB=%d, SOUND=%d)\n", ins.Time, ins.VabID, ins.SoundID)
		default:
			fmt.Fprintln(w, "NOT IMPLEMENTED")
		}
	}
	fmt.Fprintln(w, "END INSTRUCTIONS")
}
