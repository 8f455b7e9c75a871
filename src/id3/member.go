package id3

import (
	"fmt"
	"sort"

	"github.com/bogem/id3v2/v2"
)

// member is one entry of the forwarding table. Exactly one of value and
// call is set.
type member struct {
	value func() any
	call  func(args []any) (any, error)
}

// Member is a resolved member of a Tag: either a plain value or
// something to Call.
type Member struct {
	Name  string
	value any
	call  func(args []any) (any, error)
	owner *Tag
}

// Callable reports whether the member has to be called.
func (m Member) Callable() bool { return m.call != nil }

// Value returns the value of a non-callable member, nil otherwise.
func (m Member) Value() any { return m.value }

// Call invokes the member. A result that is the wrapped library tag is
// replaced by the owning *Tag, so chains of calls stay on the proxy.
func (m Member) Call(args ...any) (any, error) {
	if m.call == nil {
		return nil, &MemberError{Name: m.Name, Err: ErrNotCallable}
	}
	res, err := m.call(args)
	if err != nil {
		return nil, err
	}
	if inner, ok := res.(*id3v2.Tag); ok && inner == m.owner.inner {
		return m.owner, nil
	}
	return res, nil
}

// Resolve looks up name among the tag's own members (Save, Close) and
// then among the forwarded members of the wrapped library tag.
func (t *Tag) Resolve(name string) (Member, error) {
	m, ok := t.members[name]
	if !ok {
		return Member{}, &MemberError{Name: name, Err: ErrUnknownMember}
	}
	if m.value != nil {
		return Member{Name: name, value: m.value(), owner: t}, nil
	}
	return Member{Name: name, call: m.call, owner: t}, nil
}

// Call resolves name and calls it with args.
func (t *Tag) Call(name string, args ...any) (any, error) {
	m, err := t.Resolve(name)
	if err != nil {
		return nil, err
	}
	return m.Call(args...)
}

// Members lists every name Resolve accepts.
func (t *Tag) Members() []string {
	names := make([]string, 0, len(t.members))
	for name := range t.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Tag) memberTable() map[string]member {
	in := t.inner
	getter := func(name string, f func() string) member {
		return member{call: func(args []any) (any, error) {
			if err := arity(name, args, 0); err != nil {
				return nil, err
			}
			return f(), nil
		}}
	}
	setter := func(name string, f func(string)) member {
		return member{call: func(args []any) (any, error) {
			if err := arity(name, args, 1); err != nil {
				return nil, err
			}
			s, err := stringArg(name, args, 0)
			if err != nil {
				return nil, err
			}
			f(s)
			return in, nil
		}}
	}
	byID := func(name string, f func(id string) any) member {
		return member{call: func(args []any) (any, error) {
			if err := arity(name, args, 1); err != nil {
				return nil, err
			}
			id, err := stringArg(name, args, 0)
			if err != nil {
				return nil, err
			}
			return f(id), nil
		}}
	}

	return map[string]member{
		// own
		"Save": {call: func(args []any) (any, error) {
			v := DefaultVersion
			if len(args) > 1 {
				return nil, badArgs("Save", "want at most 1 argument, got %d", len(args))
			}
			if len(args) == 1 {
				n, err := intArg("Save", args, 0)
				if err != nil {
					return nil, err
				}
				if v, err = ParseVersion(n); err != nil {
					return nil, err
				}
			}
			return nil, t.Save(v)
		}},
		"Close": {call: func(args []any) (any, error) {
			if err := arity("Close", args, 0); err != nil {
				return nil, err
			}
			return nil, t.Close()
		}},

		// values
		"Version":         {value: func() any { return in.Version() }},
		"Count":           {value: func() any { return in.Count() }},
		"Size":            {value: func() any { return in.Size() }},
		"HasFrames":       {value: func() any { return in.HasFrames() }},
		"DefaultEncoding": {value: func() any { return in.DefaultEncoding() }},
		"AllFrames":       {value: func() any { return in.AllFrames() }},

		// forwarded calls
		"Title":     getter("Title", in.Title),
		"Artist":    getter("Artist", in.Artist),
		"Album":     getter("Album", in.Album),
		"Year":      getter("Year", in.Year),
		"Genre":     getter("Genre", in.Genre),
		"SetTitle":  setter("SetTitle", in.SetTitle),
		"SetArtist": setter("SetArtist", in.SetArtist),
		"SetAlbum":  setter("SetAlbum", in.SetAlbum),
		"SetYear":   setter("SetYear", in.SetYear),
		"SetGenre":  setter("SetGenre", in.SetGenre),
		"CommonID": byID("CommonID", func(desc string) any {
			return in.CommonID(desc)
		}),
		"GetFrames": byID("GetFrames", func(id string) any {
			return in.GetFrames(id)
		}),
		"GetLastFrame": byID("GetLastFrame", func(id string) any {
			return in.GetLastFrame(id)
		}),
		"GetTextFrame": byID("GetTextFrame", func(id string) any {
			return in.GetTextFrame(id)
		}),
		"DeleteFrames": byID("DeleteFrames", func(id string) any {
			in.DeleteFrames(id)
			return in
		}),
		"DeleteAllFrames": {call: func(args []any) (any, error) {
			if err := arity("DeleteAllFrames", args, 0); err != nil {
				return nil, err
			}
			in.DeleteAllFrames()
			return in, nil
		}},
		"AddTextFrame": {call: func(args []any) (any, error) {
			if len(args) != 2 && len(args) != 3 {
				return nil, badArgs("AddTextFrame", "want 2 or 3 arguments, got %d", len(args))
			}
			id, err := stringArg("AddTextFrame", args, 0)
			if err != nil {
				return nil, err
			}
			text, err := stringArg("AddTextFrame", args, 1)
			if err != nil {
				return nil, err
			}
			enc := in.DefaultEncoding()
			if len(args) == 3 {
				e, ok := args[2].(id3v2.Encoding)
				if !ok {
					return nil, badArgs("AddTextFrame", "argument 3: want id3v2.Encoding, got %T", args[2])
				}
				enc = e
			}
			in.AddTextFrame(id, enc, text)
			return in, nil
		}},
		"AddFrame": {call: func(args []any) (any, error) {
			if err := arity("AddFrame", args, 2); err != nil {
				return nil, err
			}
			id, err := stringArg("AddFrame", args, 0)
			if err != nil {
				return nil, err
			}
			f, ok := args[1].(id3v2.Framer)
			if !ok || f == nil {
				return nil, badArgs("AddFrame", "argument 2: want id3v2.Framer, got %T", args[1])
			}
			in.AddFrame(id, f)
			return in, nil
		}},
		"SetDefaultEncoding": {call: func(args []any) (any, error) {
			if err := arity("SetDefaultEncoding", args, 1); err != nil {
				return nil, err
			}
			e, ok := args[0].(id3v2.Encoding)
			if !ok {
				return nil, badArgs("SetDefaultEncoding", "argument 1: want id3v2.Encoding, got %T", args[0])
			}
			in.SetDefaultEncoding(e)
			return in, nil
		}},
	}
}

func badArgs(name, format string, a ...any) error {
	return &MemberError{Name: name, Err: fmt.Errorf("%w: "+format, append([]any{ErrBadArguments}, a...)...)}
}

func arity(name string, args []any, n int) error {
	if len(args) != n {
		return badArgs(name, "want %d arguments, got %d", n, len(args))
	}
	return nil
}

func stringArg(name string, args []any, i int) (string, error) {
	switch v := args[i].(type) {
	case string:
		return v, nil
	case FrameID:
		return string(v), nil
	}
	return "", badArgs(name, "argument %d: want string, got %T", i+1, args[i])
}

func intArg(name string, args []any, i int) (int, error) {
	switch v := args[i].(type) {
	case int:
		return v, nil
	case Version:
		return int(v), nil
	}
	return 0, badArgs(name, "argument %d: want int, got %T", i+1, args[i])
}
