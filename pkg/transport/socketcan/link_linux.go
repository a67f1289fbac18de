//go:build linux

package socketcan

import (
	"fmt"
	"net"

	"github.com/mdlayher/netlink"
	"github.com/mdlayher/netlink/nlenc"
	"golang.org/x/sys/unix"
)

// ifInfoMsg is struct ifinfomsg.
type ifInfoMsg struct {
	Family uint8
	Type   uint16
	Index  int32
	Flags  uint32
	Change uint32
}

func (m *ifInfoMsg) marshalBinary() []byte {
	buf := make([]byte, unix.SizeofIfInfomsg)
	buf[0] = m.Family
	nlenc.PutUint16(buf[2:4], m.Type)
	nlenc.PutInt32(buf[4:8], m.Index)
	nlenc.PutUint32(buf[8:12], m.Flags)
	nlenc.PutUint32(buf[12:16], m.Change)
	return buf
}

// SetLinkUp brings a CAN interface up or down. It requires CAP_NET_ADMIN.
// Bitrate must be configured separately (e.g. ip link set can0 type can
// bitrate 1000000).
func SetLinkUp(ifname string, up bool) error {
	ifi, err := net.InterfaceByName(ifname)
	if err != nil {
		return fmt.Errorf("interface %s: %w", ifname, err)
	}
	c, err := netlink.Dial(unix.NETLINK_ROUTE, &netlink.Config{})
	if err != nil {
		return fmt.Errorf("couldn't dial netlink socket: %w", err)
	}
	defer c.Close()

	msg := &ifInfoMsg{Index: int32(ifi.Index), Change: unix.IFF_UP}
	if up {
		msg.Flags = unix.IFF_UP
	}
	req := netlink.Message{
		Header: netlink.Header{
			Flags: netlink.Request | netlink.Acknowledge,
			Type:  unix.RTM_NEWLINK,
		},
		Data: msg.marshalBinary(),
	}
	res, err := c.Execute(req)
	if err != nil {
		return fmt.Errorf("couldn't set link %s: %w", ifname, err)
	}
	if len(res) > 1 {
		return fmt.Errorf("expected 1 message, got %d", len(res))
	}
	return nil
}
