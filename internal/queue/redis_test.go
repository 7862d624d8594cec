package queue

import (
	"testing"
)

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantAddr     string
		wantPassword string
		wantDB       int
		wantTLS      bool
		wantErr      bool
	}{
		{
			name:     "legacy host port",
			url:      "localhost:6379",
			wantAddr: "localhost:6379",
		},
		{
			name:     "redis scheme",
			url:      "redis://localhost:6379/0",
			wantAddr: "localhost:6379",
		},
		{
			name:         "redis with password and db",
			url:          "redis://:secret@redis.internal:6380/2",
			wantAddr:     "redis.internal:6380",
			wantPassword: "secret",
			wantDB:       2,
		},
		{
			name:     "rediss enables TLS",
			url:      "rediss://redis.internal:6380",
			wantAddr: "redis.internal:6380",
			wantTLS:  true,
		},
		{
			name:    "unsupported scheme",
			url:     "http://localhost:6379",
			wantErr: true,
		},
		{
			name:    "missing host",
			url:     "redis://",
			wantErr: true,
		},
		{
			name:    "bad db number",
			url:     "redis://localhost:6379/abc",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt, err := ParseRedisURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseRedisURL() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRedisURL() error = %v", err)
			}
			if opt.Addr != tt.wantAddr {
				t.Errorf("Addr = %q, want %q", opt.Addr, tt.wantAddr)
			}
			if opt.Password != tt.wantPassword {
				t.Errorf("Password = %q, want %q", opt.Password, tt.wantPassword)
			}
			if opt.DB != tt.wantDB {
				t.Errorf("DB = %d, want %d", opt.DB, tt.wantDB)
			}
			if (opt.TLSConfig != nil) != tt.wantTLS {
				t.Errorf("TLSConfig set = %v, want %v", opt.TLSConfig != nil, tt.wantTLS)
			}
		})
	}
}

func TestIngestSnapshotPayloadRoundTrip(t *testing.T) {
	payload, err := NewIngestSnapshotTask("snap-9", "ds-1")
	if err != nil {
		t.Fatalf("NewIngestSnapshotTask() error = %v", err)
	}

	data, err := payload.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	got, err := UnmarshalIngestSnapshotPayload(data)
	if err != nil {
		t.Fatalf("UnmarshalIngestSnapshotPayload() error = %v", err)
	}
	if got.SnapshotID != "snap-9" || got.DatasetID != "ds-1" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestNewIngestSnapshotTaskRequiresID(t *testing.T) {
	if _, err := NewIngestSnapshotTask("", ""); err == nil {
		t.Fatal("NewIngestSnapshotTask(\"\") succeeded, want error")
	}
}
