package clusterrt_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/james-lawrence/launcher/clusterrt"
	"github.com/james-lawrence/launcher/internal/x/gomegax"
	"github.com/james-lawrence/launcher/internal/x/testingx"
)

// script writes an executable shell script standing in for the runtime.
func script(dir, name, body string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755)).To(Succeed())
	return path
}

var _ = Describe("ParseAddress", func() {
	DescribeTable("examples",
		func(output string, expected string) {
			Expect(ParseAddress(Marker("ray"), []byte(output))).To(Equal(expected))
		},
		Entry("quoted", "ray start --address='10.0.0.5:31000'", "10.0.0.5:31000"),
		Entry("unquoted", "ray start --address=10.0.0.5:31000", "10.0.0.5:31000"),
		Entry("double quoted", "ray start --address=\"10.0.0.5:31000\"", "10.0.0.5:31000"),
		Entry(
			"embedded within the banner",
			"Local node IP: 10.0.0.5\n--------------------\nTo add another node to this Ray cluster, run\n    ray start --address='10.0.0.5:31000'  \n\nTo connect to this Ray cluster:\n",
			"10.0.0.5:31000",
		),
		Entry("first announcement wins", "ray start --address='10.0.0.5:31000'\nray start --address='10.0.0.6:31000'", "10.0.0.5:31000"),
		Entry("blank announcement is skipped", "ray start --address=''\nray start --address='10.0.0.6:31000'", "10.0.0.6:31000"),
	)

	It("should fail when the marker is absent", func() {
		_, err := ParseAddress(Marker("ray"), []byte("ray runtime started.\n"))
		Expect(err).To(MatchError(ErrAddressNotFound))
	})

	It("should use the runtime name for the marker", func() {
		Expect(New("/opt/bin/ray").Marker()).To(Equal("ray start --address="))
		Expect(New("").Marker()).To(Equal("ray start --address="))
	})
})

var _ = Describe("CLI", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = filepath.Abs(testingx.TempDir())
		Expect(err).To(Succeed())
	})

	Describe("Head", func() {
		It("should start the head on the port and parse the address", func() {
			args := filepath.Join(dir, "args")
			rt := script(dir, "ray", fmt.Sprintf("echo \"$@\" > %s\necho \"  ray start --address='10.0.0.5:31000'\"", args))

			address, err := New(rt, OptionOutput(io.Discard)).Head(context.Background(), 31000)
			Expect(err).To(Succeed())
			Expect(address).To(Equal("10.0.0.5:31000"))
			Expect(args).To(gomegax.HaveFileContents("start --head --port=31000"))
		})

		It("should advertise the node ip when provided", func() {
			args := filepath.Join(dir, "args")
			rt := script(dir, "ray", fmt.Sprintf("echo \"$@\" > %s\necho \"ray start --address='10.0.0.7:31000'\"", args))

			_, err := New(rt, OptionNodeIP("10.0.0.7"), OptionOutput(io.Discard)).Head(context.Background(), 31000)
			Expect(err).To(Succeed())
			Expect(args).To(gomegax.HaveFileContents("start --head --port=31000 --node-ip-address=10.0.0.7"))
		})

		It("should fail when no address is announced", func() {
			rt := script(dir, "ray", "echo 'failed to start'\nexit 1")

			_, err := New(rt, OptionOutput(io.Discard)).Head(context.Background(), 31000)
			Expect(errors.Cause(err)).To(Equal(ErrAddressNotFound))
		})

		It("should fail when the runtime is missing", func() {
			_, err := New(filepath.Join(dir, "missing"), OptionOutput(io.Discard)).Head(context.Background(), 31000)
			Expect(errors.Cause(err)).To(Equal(ErrAddressNotFound))
		})
	})

	Describe("Join", func() {
		It("should join using the address", func() {
			args := filepath.Join(dir, "args")
			rt := script(dir, "ray", fmt.Sprintf("echo \"$@\" > %s", args))

			Expect(New(rt, OptionOutput(io.Discard)).Join(context.Background(), "10.0.0.5:31000")).To(Succeed())
			Expect(args).To(gomegax.HaveFileContents("start --address 10.0.0.5:31000"))
		})

		It("should report a failed join", func() {
			rt := script(dir, "ray", "exit 2")
			Expect(New(rt, OptionOutput(io.Discard)).Join(context.Background(), "10.0.0.5:31000")).ToNot(Succeed())
		})
	})
})
