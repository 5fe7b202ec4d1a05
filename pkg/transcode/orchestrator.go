package transcode

import (
	"context"
	"errors"
	"io"

	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/content"
	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/pcmsource"
	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/taf"
)

// chunkSize is the PCM read granularity; any 1-3 trailing bytes that don't
// form a whole 4-byte sample pair are carried into the next chunk.
const chunkSize = 4096

// Orchestrator bridges a pcmsource.Source to a taf.Encoder, writing the
// resulting TAF and its descriptor through a content.Store.
type Orchestrator struct {
	store   *content.Store
	decoder pcmsource.Decoder
	mirror  *content.LibraryMirror
}

// New builds an Orchestrator that resolves rUIDs and descriptors through
// store, decoding sources with ffmpeg.
func New(store *content.Store) *Orchestrator {
	return &Orchestrator{store: store}
}

// NewWithDecoder is New with an injectable pcmsource.Decoder, used by tests
// to exercise Convert/Stream without spawning a real subprocess.
func NewWithDecoder(store *content.Store, decoder pcmsource.Decoder) *Orchestrator {
	return &Orchestrator{store: store, decoder: decoder}
}

// WithMirror sets a LibraryMirror that every completed TAF (and its
// sidecar) is pushed to once encoding finishes. A nil mirror disables
// mirroring; Push/PushEntry are also no-ops against a nil receiver and
// return before touching the filesystem.
func (o *Orchestrator) WithMirror(m *content.LibraryMirror) *Orchestrator {
	o.mirror = m
	return o
}

func (o *Orchestrator) pushToMirror(ctx context.Context, path string) error {
	if o.mirror == nil {
		return nil
	}
	return o.mirror.PushEntry(ctx, path)
}

func (o *Orchestrator) newSource(uris []string, skipSeconds float64) (*pcmsource.Source, error) {
	if o.decoder != nil {
		return pcmsource.NewWithDecoder(uris, skipSeconds, o.decoder)
	}
	return pcmsource.New(uris, skipSeconds)
}

// Convert runs a batch transcode: decode every URI in order, encode
// continuously, and close once the decoder chain EOFs.
func (o *Orchestrator) Convert(ctx context.Context, ruid string, audioID uint32, uris []string, skipSeconds float64, desc *content.Descriptor) error {
	path, err := o.store.Resolve(ruid)
	if err != nil {
		return err
	}
	if desc == nil {
		desc = &content.Descriptor{}
	}
	desc.Live = false
	if err := o.store.WriteDescriptorFor(ruid, desc); err != nil {
		return err
	}

	src, err := o.newSource(uris, skipSeconds)
	if err != nil {
		return err
	}
	defer src.Close()

	enc, err := taf.NewEncoder(path, audioID)
	if err != nil {
		return err
	}

	if err := pump(ctx, src, enc); err != nil {
		enc.Abort()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return o.pushToMirror(context.Background(), path)
}

// Stream runs a live transcode: the descriptor is marked live=true, the
// URI list is cycled indefinitely, and a new chapter is opened every time
// the decoder advances to the next URI, whether by clean EOF or failure.
// Stream returns when ctx is cancelled.
func (o *Orchestrator) Stream(ctx context.Context, ruid string, audioID uint32, uris []string, desc *content.Descriptor) error {
	if len(uris) == 0 {
		return errors.New("transcode: Stream requires at least one URI")
	}
	path, err := o.store.Resolve(ruid)
	if err != nil {
		return err
	}
	if desc == nil {
		desc = &content.Descriptor{}
	}
	desc.Live = true
	if err := o.store.WriteDescriptorFor(ruid, desc); err != nil {
		return err
	}

	enc, err := taf.NewEncoder(path, audioID)
	if err != nil {
		return err
	}

	for idx := 0; ctx.Err() == nil; idx++ {
		uri := uris[idx%len(uris)]
		src, srcErr := o.newSource([]string{uri}, 0)
		if srcErr != nil {
			enc.Abort()
			return srcErr
		}

		pumpErr := pump(ctx, src, enc)
		src.Close()

		if ctx.Err() != nil {
			break
		}
		if pumpErr != nil && !errors.Is(pumpErr, pcmsource.ErrDecoderFailed) {
			enc.Abort()
			return pumpErr
		}
		if err := enc.NewChapter(); err != nil {
			enc.Abort()
			return err
		}
	}

	enc.Cancel()
	if err := enc.Close(); err != nil {
		return err
	}
	return o.pushToMirror(context.Background(), path)
}

// pump reads chunkSize-aligned PCM from src and writes it to enc until src
// reaches EOF, the encoder is cancelled, or a read error occurs. A 1-3
// byte remainder that doesn't complete a sample pair is carried into the
// next read.
func pump(ctx context.Context, src *pcmsource.Source, enc *taf.Encoder) error {
	buf := make([]byte, chunkSize)
	var carry []byte

	for enc.Active() {
		n, err := src.Read(ctx, buf)
		if n > 0 {
			data := buf[:n]
			if len(carry) > 0 {
				data = append(append([]byte(nil), carry...), data...)
				carry = nil
			}
			aligned := len(data) - len(data)%4
			if aligned > 0 {
				if werr := enc.Write(data[:aligned]); werr != nil {
					return werr
				}
			}
			if rem := data[aligned:]; len(rem) > 0 {
				carry = append([]byte(nil), rem...)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}
