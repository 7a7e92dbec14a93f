// Package pcap turns captured network packets into raw samples so that live
// traffic can feed the same extraction and scoring path as sensor events.
package pcap

import (
	"context"
	"errors"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/hed1ad/edgeguard/pkg/features"
)

// Reader reads packets from PCAP files or live interfaces and emits one
// raw sample per packet. The sample payload is a mapping, so packets flow
// through ordinary field extraction: sizes and ports come out numeric, the
// protocol name categorical.
type Reader struct {
	handle        *pcap.Handle
	lastTimestamp time.Time
	isLive        bool
}

// NewFileReader creates a reader for PCAP files.
func NewFileReader(filename string) (*Reader, error) {
	handle, err := pcap.OpenOffline(filename)
	if err != nil {
		return nil, err
	}

	return &Reader{handle: handle}, nil
}

// NewLiveReader creates a reader for live packet capture.
func NewLiveReader(iface string, snaplen int32, promisc bool, timeout time.Duration) (*Reader, error) {
	handle, err := pcap.OpenLive(iface, snaplen, promisc, timeout)
	if err != nil {
		return nil, err
	}

	return &Reader{handle: handle, isLive: true}, nil
}

// Read returns all packets in the capture as raw samples.
func (r *Reader) Read() ([]features.RawSample, error) {
	if r.handle == nil {
		return nil, errors.New("reader not initialized")
	}

	var samples []features.RawSample
	packetSource := gopacket.NewPacketSource(r.handle, r.handle.LinkType())

	for packet := range packetSource.Packets() {
		samples = append(samples, r.sample(packet))
	}

	return samples, nil
}

// Stream returns a channel of raw samples for live scoring.
func (r *Reader) Stream(ctx context.Context) (<-chan features.RawSample, error) {
	if r.handle == nil {
		return nil, errors.New("reader not initialized")
	}

	out := make(chan features.RawSample, 1000)
	packetSource := gopacket.NewPacketSource(r.handle, r.handle.LinkType())

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case packet, ok := <-packetSource.Packets():
				if !ok {
					return
				}
				select {
				case out <- r.sample(packet):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close releases resources.
func (r *Reader) Close() error {
	if r.handle != nil {
		r.handle.Close()
	}
	return nil
}

// sample flattens one packet into a mapping payload.
func (r *Reader) sample(packet gopacket.Packet) features.RawSample {
	payload := map[string]any{
		"packet_size": float64(len(packet.Data())),
	}

	if metadata := packet.Metadata(); metadata != nil && !metadata.Timestamp.IsZero() {
		if !r.lastTimestamp.IsZero() {
			payload["inter_arrival_time"] = metadata.Timestamp.Sub(r.lastTimestamp).Seconds()
		}
		r.lastTimestamp = metadata.Timestamp
	}

	if tcpLayer := packet.Layer(layers.LayerTypeTCP); tcpLayer != nil {
		tcp := tcpLayer.(*layers.TCP)
		payload["protocol"] = "tcp"
		payload["src_port"] = float64(tcp.SrcPort)
		payload["dst_port"] = float64(tcp.DstPort)
		payload["tcp_flags"] = encodeTCPFlags(tcp)
	} else if udpLayer := packet.Layer(layers.LayerTypeUDP); udpLayer != nil {
		udp := udpLayer.(*layers.UDP)
		payload["protocol"] = "udp"
		payload["src_port"] = float64(udp.SrcPort)
		payload["dst_port"] = float64(udp.DstPort)
	} else if packet.Layer(layers.LayerTypeICMPv4) != nil {
		payload["protocol"] = "icmp"
	}

	if ipLayer := packet.Layer(layers.LayerTypeIPv4); ipLayer != nil {
		ip := ipLayer.(*layers.IPv4)
		payload["ip_ttl"] = float64(ip.TTL)
	}

	if appLayer := packet.ApplicationLayer(); appLayer != nil {
		payload["payload_size"] = float64(len(appLayer.Payload()))
	}

	return features.RawSample{Type: "packet", Value: payload}
}

// encodeTCPFlags packs TCP flags into a bit field.
func encodeTCPFlags(tcp *layers.TCP) float64 {
	var flags float64
	if tcp.SYN {
		flags += 1
	}
	if tcp.ACK {
		flags += 2
	}
	if tcp.FIN {
		flags += 4
	}
	if tcp.RST {
		flags += 8
	}
	if tcp.PSH {
		flags += 16
	}
	if tcp.URG {
		flags += 32
	}
	return flags
}
