package engine

import (
	"encoding/json"
	"testing"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
)

func TestEncodeFrame_GroupsCampsAscending(t *testing.T) {
	frame, err := EncodeFrame(7, []Command{
		spawn(2, 7, "c2-a"),
		spawn(0, 7, "c0-a"),
		spawn(2, 7, "c2-b"),
	})
	if err != nil {
		t.Fatal(err)
	}

	if frame.Frame != 7 || len(frame.Data) != 2 {
		t.Fatalf("unexpected frame: %+v", frame)
	}
	if frame.Data[0].CampID != 0 || frame.Data[1].CampID != 2 {
		t.Errorf("camps not ascending: %d, %d", frame.Data[0].CampID, frame.Data[1].CampID)
	}
	if len(frame.Data[1].Inputs) != 2 {
		t.Fatalf("camp 2 inputs = %d", len(frame.Data[1].Inputs))
	}

	var payload struct {
		Label        string `json:"label"`
		PlayerID     *int   `json:"PlayerID"`
		ExecuteFrame *int   `json:"ExecuteFrame"`
	}
	if err := json.Unmarshal(frame.Data[1].Inputs[1].Command, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Label != "c2-b" {
		t.Errorf("arrival order lost: %q", payload.Label)
	}
	if payload.PlayerID != nil || payload.ExecuteFrame != nil {
		t.Error("header must not leak into the canonical encoding")
	}
	if frame.Data[0].Inputs[0].CommandType != uint16(domain.CommandCreateUnit) {
		t.Errorf("wrong tag %d", frame.Data[0].Inputs[0].CommandType)
	}
}

func TestEncodeFrame_RoundTripThroughDecoder(t *testing.T) {
	orig := []Command{spawn(1, 3, "x"), spawn(0, 3, "y")}
	frame, err := EncodeFrame(3, orig)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := json.Marshal(frame)
	var back api.FrameMessage
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}

	cmds := spawnDecoder{}.Decode(back, domain.SourceReplay)
	if len(cmds) != 2 {
		t.Fatalf("decoded %d commands", len(cmds))
	}
	first := cmds[0].(*spawnCmd)
	if first.PlayerID != 0 || first.Label != "y" || first.Source != domain.SourceReplay {
		t.Errorf("unexpected first command: %+v", first)
	}
}
