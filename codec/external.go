/*
 *  MIT License
 *
 *  Copyright (c) 2020 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

package codec

import (
	"io"
	"os/exec"
)

// External wraps an arbitrary decompressor/compressor program (zstd,
// lrzip, an in-house codec, ...) as the "program-invoke" variant the design
// notes call for alongside the built-in tagged-sum codecs (§9). It is kept
// outside the Algorithm enum because it is parameterized by a command line
// rather than by a fixed signature; a caller that knows it is dealing with
// one wires it in explicitly rather than through Detect.
type External struct {
	ReadArgv  []string
	WriteArgv []string
}

func (e External) Reader(r io.Reader) (io.ReadCloser, error) {
	if len(e.ReadArgv) == 0 {
		return nil, errNoExternalCommand
	}
	cmd := exec.Command(e.ReadArgv[0], e.ReadArgv[1:]...)
	cmd.Stdin = r
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err = cmd.Start(); err != nil {
		return nil, err
	}
	return &externalProcess{ReadCloser: out, cmd: cmd}, nil
}

func (e External) Writer(w io.WriteCloser) (io.WriteCloser, error) {
	if len(e.WriteArgv) == 0 {
		return nil, errNoExternalCommand
	}
	cmd := exec.Command(e.WriteArgv[0], e.WriteArgv[1:]...)
	cmd.Stdout = w
	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err = cmd.Start(); err != nil {
		return nil, err
	}
	return &externalProcessWriter{WriteCloser: in, cmd: cmd}, nil
}

var errNoExternalCommand = ioErrNoCommand{}

type ioErrNoCommand struct{}

func (ioErrNoCommand) Error() string { return "codec: no external command configured" }

type externalProcess struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (p *externalProcess) Close() error {
	_ = p.ReadCloser.Close()
	return p.cmd.Wait()
}

type externalProcessWriter struct {
	io.WriteCloser
	cmd *exec.Cmd
}

func (p *externalProcessWriter) Close() error {
	if err := p.WriteCloser.Close(); err != nil {
		return err
	}
	return p.cmd.Wait()
}
