package device

// bitHumidityEvolution is the bit the sensor evolution step actually reads
// and sets for humidity: bit 2, not bit 4 (bitHumidSensor). This mismatch
// exists in the reference device's update_sensors and is preserved here
// for bit-exact reproduction rather than "fixed" to match the bitmap
// convention used by power_sensors/reset_sensors/connected_device.
const bitHumidityEvolution = 2

// evolveSensors advances the sensor simulation exactly once. It must be
// called with d.mu held, immediately after a command has been dispatched.
func (d *Device) evolveSensors() {
	if d.mem.powerState&(1<<bitTempSensor) != 0 {
		delta := d.rng.Intn(5) - 2 // uniform in [-2, 2]
		if d.mem.heater > 0 && d.mem.powerState&(1<<bitHeater) != 0 {
			delta += int(d.mem.heater) / 2
		}
		if d.mem.fan > 128 && d.mem.powerState&(1<<bitFan) != 0 {
			delta--
		}
		d.tempBase = d.tempBase + uint8(delta) // 8-bit wraparound is intentional
		d.mem.tempValue = d.tempBase + uint8(d.rng.Intn(3))
		if d.rng.Intn(100) == 0 {
			d.mem.errorState |= 1 << bitTempSensor
		}
	}

	if d.mem.powerState&(1<<bitHumidityEvolution) != 0 {
		delta := d.rng.Intn(5) - 2
		if d.mem.fan > 128 && d.mem.powerState&(1<<bitFan) != 0 {
			delta--
		}
		if d.mem.heater > 0 && d.mem.powerState&(1<<bitHeater) != 0 {
			delta -= int(d.mem.heater) / 3
		}
		d.humidBase = d.humidBase + uint8(delta)
		d.mem.humidVal = d.humidBase + uint8(d.rng.Intn(3))
		if d.rng.Intn(100) == 0 {
			d.mem.errorState |= 1 << bitHumidityEvolution
		}
	}
}
