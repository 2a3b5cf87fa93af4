package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/dgnsrekt/wordrunner/internal/source"
	"github.com/dgnsrekt/wordrunner/internal/submit"
	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/dgnsrekt/wordrunner/rsvp/stream"
	"github.com/dgnsrekt/wordrunner/utils"
)

// conversation is a set of messages that reports its own changes.
type conversation interface {
	rsvp.SourceSet
	OnEvent(fn func(stream.Event))
}

// input is the text the reader follows and the place replies go. Exactly one
// of single and conv is set.
type input struct {
	title  string
	single rsvp.TextSource
	conv   conversation
	sink   rsvp.SubmitSink
	stdin  bool

	// run feeds the sources until the context is done.
	run []func(context.Context) error
}

// finisher is implemented by sources that can be marked complete.
type finisher interface {
	Finish()
}

// inputFromArg parses an argument and creates the input for it. With follow
// set, files and directories keep being watched for growth.
func inputFromArg(arg string, follow bool) (*input, error) {
	// from stdin
	if arg == "-" {
		in := readerInput("stdin", os.Stdin)
		in.stdin = true
		return in, nil
	}

	// websocket feeds
	if u, err := url.ParseRequestURI(arg); err == nil && strings.Contains(arg, "://") {
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return nil, fmt.Errorf("%s is not a supported protocol", u.Scheme)
		}
		conv := source.NewWSConversation(u.String())
		return &input{
			title: u.Host,
			conv:  conv,
			sink:  submit.NewWSSink(conv),
			run:   []func(context.Context) error{conv.Run},
		}, nil
	}

	if arg == "" {
		return nil, errors.New("missing text source")
	}
	path := utils.CleanPath(arg)
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open source: %w", err)
	}

	// a conversation directory:
	if st.IsDir() {
		conv := source.NewDirConversation(path)
		if err := conv.Sync(); err != nil {
			return nil, fmt.Errorf("unable to read conversation: %w", err)
		}
		in := &input{
			title: filepath.Base(conv.Dir()),
			conv:  conv,
			sink:  submit.NewDirSink(conv.Dir()),
		}
		if follow {
			in.run = append(in.run, conv.Watch)
		} else {
			in.finishAll()
		}
		return in, nil
	}

	src := source.NewFileSource(path)
	if _, err := src.Reload(); err != nil {
		return nil, err //nolint:wrapcheck
	}
	in := &input{
		title:  src.Meta().Title,
		single: src,
		sink:   defaultSink(),
	}
	if follow {
		in.run = append(in.run, src.Watch)
	} else {
		src.Finish()
	}
	return in, nil
}

// readerInput reads a stream such as a pipe until EOF.
func readerInput(name string, r io.Reader) *input {
	src := source.NewReaderSource(name, r)
	return &input{
		title:  name,
		single: src,
		sink:   defaultSink(),
		run:    []func(context.Context) error{src.Run},
	}
}

// defaultSink is where replies to a single text go.
func defaultSink() rsvp.SubmitSink {
	if clipboard.Unsupported {
		return submit.DiscardSink{}
	}
	return submit.NewClipboardSink()
}

// sources returns every source of the input.
func (in *input) sources() []rsvp.TextSource {
	if in.conv != nil {
		return in.conv.Sources()
	}
	if in.single != nil {
		return []rsvp.TextSource{in.single}
	}
	return nil
}

// finishAll marks every source complete, e.g. once nothing feeds them any
// more.
func (in *input) finishAll() {
	for _, src := range in.sources() {
		if f, ok := src.(finisher); ok {
			f.Finish()
		}
	}
}
