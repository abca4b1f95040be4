package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tautek/riak"
)

// Wrap is the number of characters to wrap the help text at
const Wrap int = 50

// wrapString wraps a string at Wrap characters
func wrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// parseQuorum accepts one, quorum, all, default or a number of replicas.
func parseQuorum(s string) (uint32, error) {
	switch strings.ToLower(s) {
	case "one":
		return riak.QuorumOne, nil
	case "quorum":
		return riak.QuorumQuorum, nil
	case "all":
		return riak.QuorumAll, nil
	case "default":
		return riak.QuorumDefault, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid quorum %q: use one, quorum, all, default or a number", s)
	}
	return uint32(n), nil
}

func formatQuorum(v *uint32) string {
	if v == nil {
		return "-"
	}
	switch *v {
	case riak.QuorumOne:
		return "one"
	case riak.QuorumQuorum:
		return "quorum"
	case riak.QuorumAll:
		return "all"
	case riak.QuorumDefault:
		return "default"
	}
	return strconv.FormatUint(uint64(*v), 10)
}

// quorumFlag returns the flag value when it was set on the command line.
func quorumFlag(flags *pflag.FlagSet, name string) (*uint32, error) {
	if !flags.Changed(name) {
		return nil, nil
	}
	s, _ := flags.GetString(name)
	q, err := parseQuorum(s)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func boolFlag(flags *pflag.FlagSet, name string) *bool {
	if !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetBool(name)
	return &v
}

func uint32Flag(flags *pflag.FlagSet, name string) *uint32 {
	if !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetUint32(name)
	return &v
}

func bytesFlag(flags *pflag.FlagSet, name string) []byte {
	v, _ := flags.GetString(name)
	if v == "" {
		return nil
	}
	return []byte(v)
}

// bucketTypeFlag adds the --type flag shared by bucket scoped commands.
func bucketTypeFlag(cmd *cobra.Command) {
	cmd.Flags().String("type", "", wrapString("bucket type, the default type when empty"))
}

func printContent(c riak.Content) {
	fmt.Printf("value: %s\n", c.Value)
	if c.ContentType != nil {
		fmt.Printf("content-type: %s\n", c.ContentType)
	}
	if c.VTag != nil {
		fmt.Printf("vtag: %s\n", c.VTag)
	}
	if c.LastMod != nil {
		fmt.Printf("last-modified: %d\n", *c.LastMod)
	}
	for _, p := range c.UserMeta {
		fmt.Printf("meta %s: %s\n", p.Key, p.Value)
	}
	for _, p := range c.Indexes {
		fmt.Printf("index %s: %s\n", p.Key, p.Value)
	}
	if c.Deleted != nil && *c.Deleted {
		fmt.Println("deleted: true")
	}
}

func printProps(p riak.BucketProps) {
	row := func(name string, value any) {
		fmt.Printf("%-16s %v\n", name+":", value)
	}
	optBool := func(v *bool) string {
		if v == nil {
			return "-"
		}
		return strconv.FormatBool(*v)
	}
	optUint := func(v *uint32) string {
		if v == nil {
			return "-"
		}
		return strconv.FormatUint(uint64(*v), 10)
	}

	row("n_val", optUint(p.NVal))
	row("allow_mult", optBool(p.AllowMult))
	row("last_write_wins", optBool(p.LastWriteWins))
	row("r", formatQuorum(p.R))
	row("w", formatQuorum(p.W))
	row("pr", formatQuorum(p.PR))
	row("pw", formatQuorum(p.PW))
	row("dw", formatQuorum(p.DW))
	row("rw", formatQuorum(p.RW))
	row("basic_quorum", optBool(p.BasicQuorum))
	row("notfound_ok", optBool(p.NotfoundOK))
	if p.Backend != nil {
		row("backend", string(p.Backend))
	}
	if p.SearchIndex != nil {
		row("search_index", string(p.SearchIndex))
	}
	if p.Datatype != nil {
		row("datatype", string(p.Datatype))
	}
	if p.Consistent != nil {
		row("consistent", optBool(p.Consistent))
	}
	if p.WriteOnce != nil {
		row("write_once", optBool(p.WriteOnce))
	}
	if p.TTL != nil {
		row("ttl", optUint(p.TTL))
	}
	for _, hook := range p.Precommit {
		row("precommit", hookName(hook))
	}
	for _, hook := range p.Postcommit {
		row("postcommit", hookName(hook))
	}
}

func hookName(h riak.CommitHook) string {
	if h.ModFun != nil {
		return fmt.Sprintf("%s:%s", h.ModFun.Module, h.ModFun.Function)
	}
	return string(h.Name)
}

// propsFlags registers the settable bucket properties.
func propsFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Uint32("n-val", 3, wrapString("number of replicas"))
	f.Bool("allow-mult", false, wrapString("keep siblings on concurrent writes"))
	f.Bool("last-write-wins", false, wrapString("resolve conflicts by timestamp"))
	f.Bool("basic-quorum", false, wrapString("return early when a quorum of notfound is seen"))
	f.Bool("notfound-ok", true, wrapString("count notfound as a successful read"))
	for _, q := range []string{"r", "w", "pr", "pw", "dw", "rw"} {
		f.String(q, "", wrapString("default "+q+" quorum (one, quorum, all, default, N)"))
	}
	f.String("backend", "", wrapString("multi-backend name"))
	f.String("search-index", "", wrapString("Yokozuna index fed by the bucket"))
	f.String("datatype", "", wrapString("CRDT datatype (bucket types only)"))
	f.Uint32("ttl", 0, wrapString("object time to live in seconds"))
}

func propsFromFlags(flags *pflag.FlagSet) (riak.BucketProps, error) {
	props := riak.BucketProps{
		NVal:          uint32Flag(flags, "n-val"),
		AllowMult:     boolFlag(flags, "allow-mult"),
		LastWriteWins: boolFlag(flags, "last-write-wins"),
		BasicQuorum:   boolFlag(flags, "basic-quorum"),
		NotfoundOK:    boolFlag(flags, "notfound-ok"),
		Backend:       bytesFlag(flags, "backend"),
		SearchIndex:   bytesFlag(flags, "search-index"),
		Datatype:      bytesFlag(flags, "datatype"),
		TTL:           uint32Flag(flags, "ttl"),
	}

	quorums := map[string]**uint32{
		"r": &props.R, "w": &props.W, "pr": &props.PR,
		"pw": &props.PW, "dw": &props.DW, "rw": &props.RW,
	}
	for name, dst := range quorums {
		q, err := quorumFlag(flags, name)
		if err != nil {
			return riak.BucketProps{}, err
		}
		*dst = q
	}
	return props, nil
}
