package launchargs_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	launchargs "github.com/goliatone/go-launchargs"
)

func TestParsePlatform(t *testing.T) {
	cases := map[string]launchargs.Platform{
		"android":   launchargs.PlatformAndroid,
		" Android ": launchargs.PlatformAndroid,
		"IOS":       launchargs.PlatformIOS,
		"web":       launchargs.PlatformUnknown,
		"":          launchargs.PlatformUnknown,
	}
	for input, want := range cases {
		if got := launchargs.ParsePlatform(input); got != want {
			t.Fatalf("ParsePlatform(%q) = %q, want %q", input, got, want)
		}
	}
	if launchargs.PlatformUnknown.String() != "unknown" {
		t.Fatalf("unexpected unknown label %q", launchargs.PlatformUnknown.String())
	}
}

func TestDefaultFilterStripsAndroidInstrumentationArgs(t *testing.T) {
	filter := launchargs.DefaultKeyFilter()
	kept, dropped := filter.Filter(launchargs.PlatformAndroid, launchargs.Args{
		"hello": "world",
		"debug": false,
		"log":   false,
		"size":  "large",
	})
	if diff := cmp.Diff(launchargs.Args{"hello": "world"}, kept); diff != "" {
		t.Fatalf("kept mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"debug", "log", "size"}, dropped); diff != "" {
		t.Fatalf("dropped mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterIsIdentityWithoutReservedSet(t *testing.T) {
	args := launchargs.Args{"debug": true, "class": "x"}
	for _, platform := range []launchargs.Platform{launchargs.PlatformIOS, launchargs.PlatformUnknown} {
		kept, dropped := launchargs.DefaultKeyFilter().Filter(platform, args)
		if diff := cmp.Diff(args, kept); diff != "" {
			t.Fatalf("%s: expected identity (-want +got):\n%s", platform, diff)
		}
		if len(dropped) != 0 {
			t.Fatalf("%s: expected nothing dropped, got %v", platform, dropped)
		}
	}

	var nilFilter *launchargs.KeyFilter
	kept, _ := nilFilter.Filter(launchargs.PlatformAndroid, args)
	if diff := cmp.Diff(args, kept); diff != "" {
		t.Fatalf("nil filter should keep everything (-want +got):\n%s", diff)
	}
}

func TestReservedKeysAreConfigurationData(t *testing.T) {
	reserved := launchargs.DefaultReservedKeys().Merge(launchargs.ReservedKeys{
		launchargs.PlatformIOS: {"  ", "xctestrun"},
	})
	filter := launchargs.NewKeyFilter(reserved)

	if !filter.IsReserved(launchargs.PlatformIOS, "xctestrun") {
		t.Fatalf("expected custom ios key to be reserved")
	}
	if filter.IsReserved(launchargs.PlatformIOS, "") {
		t.Fatalf("blank names must be ignored")
	}
	if !filter.IsReserved(launchargs.PlatformAndroid, "coverageFile") {
		t.Fatalf("expected default android keys to survive merge")
	}

	replaced := launchargs.NewKeyFilter(launchargs.DefaultReservedKeys().Merge(launchargs.ReservedKeys{
		launchargs.PlatformAndroid: {"debug"},
	}))
	if diff := cmp.Diff([]string{"debug"}, replaced.Reserved(launchargs.PlatformAndroid)); diff != "" {
		t.Fatalf("override should replace android set (-want +got):\n%s", diff)
	}
}

func TestReservedKeysMergeDoesNotAlias(t *testing.T) {
	base := launchargs.DefaultReservedKeys()
	merged := base.Merge(nil)
	merged[launchargs.PlatformAndroid][0] = "changed"
	if base[launchargs.PlatformAndroid][0] == "changed" {
		t.Fatalf("merge aliases the receiver")
	}
}
