package main

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	beepSampleRate = 44100
	beepFrequency  = 440
	beepDuration   = 200 * time.Millisecond
	beepVolume     = 0.25
)

// speaker turns the machine's tone signals into short square-wave beeps.
// It runs on its own goroutine so device latency never backs up the tick
// loop; the machine emits fire-and-forget signals, not durations.
type speaker struct {
	ctx  *oto.Context
	beep []byte
}

func newSpeaker() (*speaker, error) {
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   beepSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	return &speaker{
		ctx:  otoCtx,
		beep: squareWave(beepFrequency, beepDuration),
	}, nil
}

// listen plays one beep per tone signal until the context is cancelled.
func (s *speaker) listen(ctx context.Context, tones <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-tones:
			s.play()
		}
	}
}

func (s *speaker) play() {
	player := s.ctx.NewPlayer(bytes.NewReader(s.beep))
	player.Play()

	// the player buffers ahead, close once the samples have drained
	time.AfterFunc(beepDuration+100*time.Millisecond, func() {
		_ = player.Close()
	})
}

// squareWave renders a mono 16-bit little-endian square wave.
func squareWave(freq int, d time.Duration) []byte {
	samples := int(beepSampleRate * d.Seconds())
	halfPeriod := beepSampleRate / (2 * freq)
	peak := beepVolume * math.MaxInt16
	amplitude := int16(peak)

	buf := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := amplitude
		if (i/halfPeriod)%2 == 1 {
			v = -amplitude
		}
		buf[2*i] = byte(v)
		buf[2*i+1] = byte(uint16(v) >> 8)
	}
	return buf
}
